package gtp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/fuego-go/fuego/board"
	"github.com/fuego-go/fuego/engine"
	"github.com/fuego-go/fuego/render"
	"github.com/fuego-go/fuego/sgf"
)

const (
	engineName    = "fuego-go"
	engineVersion = "1.0"
)

// handler executes one GTP command and returns the success payload.
type handler func(ctx context.Context, args []string) (string, error)

// Controller is the GTP session: it reads commands from in, drives the
// player, and writes framed responses to out.
type Controller struct {
	player *engine.Player
	in     *bufio.Scanner
	out    io.Writer

	commands map[string]handler
	quit     bool
}

// NewController wires a controller over a transport, stdio in the usual
// case.
func NewController(p *engine.Player, in io.Reader, out io.Writer) *Controller {
	c := &Controller{
		player: p,
		in:     bufio.NewScanner(in),
		out:    out,
	}
	c.commands = map[string]handler{
		"protocol_version":    c.cmdProtocolVersion,
		"name":                c.cmdName,
		"version":             c.cmdVersion,
		"known_command":       c.cmdKnownCommand,
		"list_commands":       c.cmdListCommands,
		"quit":                c.cmdQuit,
		"boardsize":           c.cmdBoardsize,
		"clear_board":         c.cmdClearBoard,
		"komi":                c.cmdKomi,
		"set_rule":            c.cmdSetRule,
		"play":                c.cmdPlay,
		"undo":                c.cmdUndo,
		"genmove":             c.cmdGenmove,
		"reg_genmove":         c.cmdRegGenmove,
		"final_score":         c.cmdFinalScore,
		"showboard":           c.cmdShowboard,
		"fixed_handicap":      c.cmdPlaceFreeHandicap,
		"place_free_handicap": c.cmdPlaceFreeHandicap,
		"set_free_handicap":   c.cmdSetFreeHandicap,
		"time_settings":       c.cmdTimeSettings,
		"time_left":           c.cmdTimeLeft,
		"param":               c.cmdParam,
		"uct_children":        c.cmdUctChildren,
		"uct_value":           c.cmdUctValue,
		"uct_sequence":        c.cmdUctSequence,
		"uct_tree_dump":       c.cmdUctTreeDump,
		"snapshot":            c.cmdSnapshot,
		"save_position":       c.cmdSavePosition,
	}
	return c
}

// Run processes commands until quit or EOF. Protocol errors never crash
// the session; each command either succeeds with a payload or fails with
// a one-line reason.
func (c *Controller) Run(ctx context.Context) error {
	for !c.quit && c.in.Scan() {
		line := c.in.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		id := ""
		if _, err := strconv.Atoi(fields[0]); err == nil {
			id = fields[0]
			fields = fields[1:]
			if len(fields) == 0 {
				c.fail(id, "missing command")
				continue
			}
		}
		name := strings.ToLower(fields[0])
		args := fields[1:]
		klog.V(2).Infof("gtp command: %s %v", name, args)

		h, ok := c.commands[name]
		if !ok {
			c.fail(id, "unknown command")
			continue
		}
		payload, err := h(ctx, args)
		if err != nil {
			klog.V(1).Infof("gtp %s failed: %v", name, err)
			c.fail(id, firstLine(err.Error()))
			continue
		}
		c.succeed(id, payload)
	}
	return errors.WithMessage(c.in.Err(), "gtp: reading input")
}

func (c *Controller) succeed(id, payload string) {
	fmt.Fprintf(c.out, "=%s %s\n\n", id, payload)
}

func (c *Controller) fail(id, reason string) {
	fmt.Fprintf(c.out, "?%s %s\n\n", id, reason)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func (c *Controller) cmdProtocolVersion(context.Context, []string) (string, error) {
	return "2", nil
}

func (c *Controller) cmdName(context.Context, []string) (string, error) {
	return engineName, nil
}

func (c *Controller) cmdVersion(context.Context, []string) (string, error) {
	return engineVersion, nil
}

func (c *Controller) cmdKnownCommand(_ context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("usage: known_command <name>")
	}
	_, ok := c.commands[strings.ToLower(args[0])]
	return strconv.FormatBool(ok), nil
}

func (c *Controller) cmdListCommands(context.Context, []string) (string, error) {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, "\n"), nil
}

func (c *Controller) cmdQuit(context.Context, []string) (string, error) {
	c.quit = true
	return "", nil
}

func (c *Controller) cmdBoardsize(_ context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("usage: boardsize <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return "", errors.Errorf("invalid size %q", args[0])
	}
	return "", c.player.NewGame(n)
}

func (c *Controller) cmdClearBoard(context.Context, []string) (string, error) {
	return "", c.player.NewGame(c.player.Board().Size())
}

func (c *Controller) cmdKomi(_ context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("usage: komi <value>")
	}
	k, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return "", errors.Errorf("invalid komi %q", args[0])
	}
	c.player.SetKomi(k)
	return "", nil
}

func (c *Controller) cmdSetRule(_ context.Context, args []string) (string, error) {
	if len(args) != 2 {
		return "", errors.New("usage: set_rule <name> <true|false>")
	}
	v, err := strconv.ParseBool(args[1])
	if err != nil {
		return "", errors.Errorf("invalid rule value %q", args[1])
	}
	return "", c.player.SetRule(args[0], v)
}

func (c *Controller) cmdPlay(_ context.Context, args []string) (string, error) {
	if len(args) != 2 {
		return "", errors.New("usage: play <color> <vertex>")
	}
	color, err := ParseColor(args[0])
	if err != nil {
		return "", err
	}
	pos := c.player.Board()
	pt, err := ParseVertex(pos, args[1])
	if err != nil {
		return "", err
	}
	return "", c.player.Play(color, pt)
}

func (c *Controller) cmdUndo(context.Context, []string) (string, error) {
	return "", c.player.Undo()
}

func (c *Controller) cmdGenmove(ctx context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("usage: genmove <color>")
	}
	color, err := ParseColor(args[0])
	if err != nil {
		return "", err
	}
	res, err := c.player.GenMove(ctx, color)
	if err != nil {
		return "", err
	}
	if res.Resign {
		return "resign", nil
	}
	return FormatVertex(c.player.Board(), res.Move), nil
}

func (c *Controller) cmdRegGenmove(ctx context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("usage: reg_genmove <color>")
	}
	color, err := ParseColor(args[0])
	if err != nil {
		return "", err
	}
	pos := c.player.Board()
	pos.SetToPlay(color)
	best, err := c.player.Search().Run(ctx, pos)
	if err != nil {
		return "", err
	}
	if best.Resign {
		return "resign", nil
	}
	return FormatVertex(pos, best.Move), nil
}

func (c *Controller) cmdFinalScore(context.Context, []string) (string, error) {
	return c.player.FinalScore(), nil
}

func (c *Controller) cmdShowboard(context.Context, []string) (string, error) {
	return "\n" + render.ASCII(c.player.Board()), nil
}

func (c *Controller) cmdPlaceFreeHandicap(_ context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("usage: place_free_handicap <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return "", errors.Errorf("invalid handicap %q", args[0])
	}
	pts, err := c.player.PlaceFreeHandicap(n)
	if err != nil {
		return "", err
	}
	pos := c.player.Board()
	out := make([]string, len(pts))
	for i, pt := range pts {
		out[i] = FormatVertex(pos, pt)
	}
	return strings.Join(out, " "), nil
}

func (c *Controller) cmdSetFreeHandicap(_ context.Context, args []string) (string, error) {
	if len(args) < 2 {
		return "", errors.New("usage: set_free_handicap <vertex> <vertex> ...")
	}
	pos := c.player.Board()
	pts := make([]board.Point, len(args))
	for i, a := range args {
		pt, err := ParseVertex(pos, a)
		if err != nil {
			return "", err
		}
		pts[i] = pt
	}
	return "", c.player.SetFreeHandicap(pts)
}

func (c *Controller) cmdTimeSettings(_ context.Context, args []string) (string, error) {
	if len(args) != 3 {
		return "", errors.New("usage: time_settings <main_sec> <byoyomi_sec> <byoyomi_stones>")
	}
	mainSec, err1 := strconv.Atoi(args[0])
	byoSec, err2 := strconv.Atoi(args[1])
	stones, err3 := strconv.Atoi(args[2])
	if err1 != nil || err2 != nil || err3 != nil || mainSec < 0 || byoSec < 0 || stones < 0 {
		return "", errors.New("invalid time settings")
	}
	c.player.TimeSettings(secs(mainSec), secs(byoSec), stones)
	return "", nil
}

func (c *Controller) cmdTimeLeft(_ context.Context, args []string) (string, error) {
	if len(args) != 3 {
		return "", errors.New("usage: time_left <color> <sec> <stones>")
	}
	color, err := ParseColor(args[0])
	if err != nil {
		return "", err
	}
	sec, err := strconv.Atoi(args[1])
	if err != nil || sec < 0 {
		return "", errors.Errorf("invalid time %q", args[1])
	}
	c.player.TimeLeft(color, secs(sec))
	return "", nil
}

// cmdParam without arguments lists every engine parameter as
// "name type value" lines; with two arguments it sets one.
func (c *Controller) cmdParam(_ context.Context, args []string) (string, error) {
	switch len(args) {
	case 0:
		params := c.player.Params()
		lines := make([]string, len(params))
		for i, p := range params {
			lines[i] = fmt.Sprintf("%s %s %s", p.Name, p.Type, p.Value)
		}
		return strings.Join(lines, "\n"), nil
	case 2:
		return "", c.player.SetParam(args[0], args[1])
	default:
		return "", errors.New("usage: param [<name> <value>]")
	}
}

func (c *Controller) cmdUctChildren(context.Context, []string) (string, error) {
	pos := c.player.Board()
	stats := c.player.Search().RootChildStats()
	sort.Slice(stats, func(i, j int) bool { return stats[i].Count > stats[j].Count })
	lines := make([]string, len(stats))
	for i, st := range stats {
		lines[i] = fmt.Sprintf("%s %d %.3f %.3f", FormatVertex(pos, st.Move), st.Count, st.Mean, st.Rave)
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Controller) cmdUctValue(context.Context, []string) (string, error) {
	return fmt.Sprintf("%.3f", c.player.Search().RootValue()), nil
}

func (c *Controller) cmdUctSequence(context.Context, []string) (string, error) {
	pos := c.player.Board()
	seq := c.player.Search().BestSequence(16)
	out := make([]string, len(seq))
	for i, pt := range seq {
		out[i] = FormatVertex(pos, pt)
	}
	return strings.Join(out, " "), nil
}

func (c *Controller) cmdUctTreeDump(_ context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("usage: uct_tree_dump <path>")
	}
	f, err := os.Create(args[0])
	if err != nil {
		return "", errors.WithMessage(err, "creating dump file")
	}
	defer f.Close()
	if err := sgf.DumpGraph(f, c.player.Search(), c.player.Board(), 4, 1); err != nil {
		return "", err
	}
	return "", nil
}

func (c *Controller) cmdSnapshot(_ context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("usage: snapshot <path>")
	}
	f, err := os.Create(args[0])
	if err != nil {
		return "", errors.WithMessage(err, "creating snapshot file")
	}
	defer f.Close()
	return "", render.WritePNG(f, c.player.Board())
}

func (c *Controller) cmdSavePosition(_ context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("usage: save_position <path>")
	}
	f, err := os.Create(args[0])
	if err != nil {
		return "", errors.WithMessage(err, "creating sgf file")
	}
	defer f.Close()
	return "", sgf.WriteGame(f, c.player.Board(), "")
}

func secs(n int) time.Duration { return time.Duration(n) * time.Second }
