package engine

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Param is one introspectable engine parameter.
type Param struct {
	Name  string
	Type  string // "bool", "int", "float", "duration", "string"
	Value string
}

// paramSpec binds a name to its accessors. Setters validate and reject
// without applying, so a failed set preserves the old value.
type paramSpec struct {
	name string
	typ  string
	get  func() string
	set  func(string) error
}

func (p *Player) specs() []paramSpec {
	boolSpec := func(name string, get func() bool, set func(bool)) paramSpec {
		return paramSpec{
			name: name, typ: "bool",
			get: func() string { return strconv.FormatBool(get()) },
			set: func(v string) error {
				b, err := strconv.ParseBool(v)
				if err != nil {
					return errors.Errorf("engine: %s wants a bool, got %q", name, v)
				}
				set(b)
				return nil
			},
		}
	}
	// search parameters funnel through SetConfig so an out-of-range value
	// is rejected as a whole.
	confInt := func(name string, get func() int64, set func(int64)) paramSpec {
		return paramSpec{
			name: name, typ: "int",
			get: func() string { return strconv.FormatInt(get(), 10) },
			set: func(v string) error {
				n, err := strconv.ParseInt(v, 10, 64)
				if err != nil {
					return errors.Errorf("engine: %s wants an int, got %q", name, v)
				}
				set(n)
				return p.applySearchConf()
			},
		}
	}
	confFloat := func(name string, get func() float64, set func(float64)) paramSpec {
		return paramSpec{
			name: name, typ: "float",
			get: func() string { return strconv.FormatFloat(get(), 'g', -1, 64) },
			set: func(v string) error {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return errors.Errorf("engine: %s wants a float, got %q", name, v)
				}
				set(f)
				return p.applySearchConf()
			},
		}
	}

	return []paramSpec{
		confInt("search_threads",
			func() int64 { return int64(p.conf.Threads) },
			func(v int64) { p.conf.Threads = int(v) }),
		boolSpec("search_lock_free",
			func() bool { return p.conf.LockFree },
			func(v bool) { p.conf.LockFree = v; p.mustApplySearchConf() }),
		boolSpec("search_deterministic",
			func() bool { return p.conf.Deterministic },
			func(v bool) { p.conf.Deterministic = v; p.mustApplySearchConf() }),
		confInt("search_seed",
			func() int64 { return int64(p.conf.Seed) },
			func(v int64) { p.conf.Seed = uint64(v) }),
		confInt("search_max_games",
			func() int64 { return p.conf.MaxGames },
			func(v int64) { p.conf.MaxGames = v }),
		{
			name: "search_max_time", typ: "duration",
			get: func() string { return p.conf.MaxTime.String() },
			set: func(v string) error {
				d, err := time.ParseDuration(v)
				if err != nil {
					return errors.Errorf("engine: search_max_time wants a duration, got %q", v)
				}
				p.conf.MaxTime = d
				return p.applySearchConf()
			},
		},
		confInt("search_expand_threshold",
			func() int64 { return int64(p.conf.ExpandThreshold) },
			func(v int64) { p.conf.ExpandThreshold = uint32(v) }),
		confFloat("search_bias_constant",
			func() float64 { return float64(p.conf.BiasConstant) },
			func(v float64) { p.conf.BiasConstant = float32(v) }),
		boolSpec("search_rave",
			func() bool { return p.conf.Rave },
			func(v bool) { p.conf.Rave = v; p.mustApplySearchConf() }),
		confFloat("search_rave_equivalence",
			func() float64 { return float64(p.conf.RaveEquivalence) },
			func(v float64) { p.conf.RaveEquivalence = float32(v) }),
		confFloat("search_first_play_urgency",
			func() float64 { return float64(p.conf.FirstPlayUrgency) },
			func(v float64) { p.conf.FirstPlayUrgency = float32(v) }),
		confFloat("search_knowledge_weight",
			func() float64 { return float64(p.conf.KnowledgeWeight) },
			func(v float64) { p.conf.KnowledgeWeight = float32(v) }),
		confFloat("search_resign_threshold",
			func() float64 { return float64(p.conf.ResignThreshold) },
			func(v float64) { p.conf.ResignThreshold = float32(v) }),
		confInt("search_resign_min_games",
			func() int64 { return int64(p.conf.ResignMinGames) },
			func(v int64) { p.conf.ResignMinGames = uint32(v) }),
		boolSpec("search_reuse_subtree",
			func() bool { return p.conf.ReuseSubtree },
			func(v bool) { p.conf.ReuseSubtree = v; p.mustApplySearchConf() }),
		confInt("search_max_nodes",
			func() int64 { return int64(p.conf.MaxNodes) },
			func(v int64) { p.conf.MaxNodes = int(v) }),

		boolSpec("playout_atari_defense",
			func() bool { return p.playoutConf.AtariDefense },
			func(v bool) { p.playoutConf.AtariDefense = v }),
		boolSpec("playout_low_lib_tactics",
			func() bool { return p.playoutConf.LowLibTactics },
			func(v bool) { p.playoutConf.LowLibTactics = v }),
		boolSpec("playout_patterns",
			func() bool { return p.playoutConf.Patterns },
			func(v bool) { p.playoutConf.Patterns = v }),
		boolSpec("playout_global_capture",
			func() bool { return p.playoutConf.GlobalCapture },
			func(v bool) { p.playoutConf.GlobalCapture = v }),
		boolSpec("playout_self_atari_correction",
			func() bool { return p.playoutConf.SelfAtariCorrection },
			func(v bool) { p.playoutConf.SelfAtariCorrection = v }),
		boolSpec("playout_clump_correction",
			func() bool { return p.playoutConf.ClumpCorrection },
			func(v bool) { p.playoutConf.ClumpCorrection = v }),

		boolSpec("filter_check_safety",
			func() bool { return p.rootFilter.CheckSafety },
			func(v bool) { p.rootFilter.CheckSafety = v }),
		boolSpec("filter_check_ladders",
			func() bool { return p.rootFilter.CheckLadders },
			func(v bool) { p.rootFilter.CheckLadders = v }),
		boolSpec("filter_check_offensive_ladders",
			func() bool { return p.rootFilter.CheckOffensiveLadders },
			func(v bool) { p.rootFilter.CheckOffensiveLadders = v }),
		boolSpec("filter_first_line",
			func() bool { return p.rootFilter.FilterFirstLine },
			func(v bool) { p.rootFilter.FilterFirstLine = v }),
		{
			name: "filter_min_ladder_length", typ: "int",
			get: func() string { return strconv.Itoa(p.rootFilter.MinLadderLength) },
			set: func(v string) error {
				n, err := strconv.Atoi(v)
				if err != nil || n < 1 {
					return errors.Errorf("engine: filter_min_ladder_length wants a positive int, got %q", v)
				}
				p.rootFilter.MinLadderLength = n
				return nil
			},
		},

		{
			name: "player_auto_save", typ: "string",
			get: func() string { return p.autoSavePath },
			set: func(v string) error { p.autoSavePath = v; return nil },
		},
	}
}

// applySearchConf pushes the staged config into the search, restoring
// nothing on success and surfacing the rejection on failure. The staged
// copy is re-read from the search so a rejected value does not linger.
func (p *Player) applySearchConf() error {
	if err := p.search.SetConfig(p.conf); err != nil {
		p.conf = p.search.Config()
		return errors.WithMessage(err, "engine: parameter rejected")
	}
	p.conf = p.search.Config()
	return nil
}

func (p *Player) mustApplySearchConf() {
	if err := p.applySearchConf(); err != nil {
		// bool toggles cannot produce an invalid config on their own.
		panic(err)
	}
}

// Params lists every parameter as (name, type, value), sorted by name.
func (p *Player) Params() []Param {
	p.mu.Lock()
	defer p.mu.Unlock()
	specs := p.specs()
	out := make([]Param, len(specs))
	for i, s := range specs {
		out[i] = Param{Name: s.name, Type: s.typ, Value: s.get()}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SetParam sets one parameter by name. On error the old value is kept.
func (p *Player) SetParam(name, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.specs() {
		if s.name == name {
			return s.set(value)
		}
	}
	return errors.Errorf("engine: unknown parameter %q", name)
}

// SetParams applies a batch of parameter assignments, attempting every one
// and aggregating the failures, so a controller gets the full list of
// rejected settings in one response.
func (p *Player) SetParams(kv map[string]string) error {
	var result *multierror.Error
	names := make([]string, 0, len(kv))
	for name := range kv {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := p.SetParam(name, kv[name]); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", name, err))
		}
	}
	return result.ErrorOrNil()
}
