// Command fuego-gtp runs the engine as a GTP server over stdio.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"k8s.io/klog/v2"

	"github.com/fuego-go/fuego/board"
	"github.com/fuego-go/fuego/engine"
	"github.com/fuego-go/fuego/gtp"
	"github.com/fuego-go/fuego/mcts"
)

func main() {
	var (
		size            = flag.Int("size", 19, "board size")
		komi            = flag.Float64("komi", 7.5, "komi")
		rule            = flag.String("rule", "simple", "ko rule: simple, superko, positional")
		srand           = flag.Uint64("srand", 0, "RNG seed; 0 seeds from entropy")
		threads         = flag.Int("threads", 1, "search worker threads")
		maxGames        = flag.Int64("max-games", 10000, "simulations per move; 0 for unlimited")
		maxTime         = flag.Duration("max-time", 0, "wall-clock budget per move; 0 for unlimited")
		resignThreshold = flag.Float64("resign-threshold", 0.05, "resign below this root value")
		deterministic   = flag.Bool("deterministic", false, "single-threaded reproducible search")
		autoSave        = flag.String("auto-save", "", "write the game record to this file after every move")
	)
	klog.InitFlags(nil)
	flag.Parse()

	rules := board.DefaultRules()
	rules.Komi = *komi
	switch *rule {
	case "simple":
		rules.KoRule = board.SimpleKo
	case "superko":
		rules.KoRule = board.SuperKo
	case "positional":
		rules.KoRule = board.PositionalSuperKo
	default:
		fmt.Fprintf(os.Stderr, "unknown ko rule %q\n", *rule)
		os.Exit(2)
	}

	conf := mcts.DefaultConfig()
	conf.Threads = *threads
	conf.Seed = *srand
	conf.MaxGames = *maxGames
	conf.MaxTime = *maxTime
	conf.ResignThreshold = float32(*resignThreshold)
	conf.Deterministic = *deterministic

	player, err := engine.NewPlayer(*size, rules, conf)
	if err != nil {
		klog.Exitf("starting engine: %v", err)
	}
	if *autoSave != "" {
		player.SetAutoSave(*autoSave)
	}
	defer func() {
		if err := player.Close(); err != nil {
			klog.Errorf("closing engine: %v", err)
		}
	}()

	klog.Infof("%s ready: size=%d komi=%.1f threads=%d", "fuego-go", *size, *komi, *threads)
	started := time.Now()
	ctrl := gtp.NewController(player, os.Stdin, os.Stdout)
	if err := ctrl.Run(context.Background()); err != nil {
		klog.Errorf("gtp session: %v", err)
	}
	klog.Infof("session over after %v", time.Since(started).Round(time.Second))
}
