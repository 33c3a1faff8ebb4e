// Package scene loads declarative animation scenes from YAML.
//
// A scene names plain-object targets with their initial values and lays out
// a timeline of steps against them:
//
//	version: "1.0"
//	targets:
//	  box: {x: 0, opacity: 1}
//	timeline:
//	  steps:
//	    - to: box
//	      props: {x: 100}
//	      duration: 1
//	    - label: fade
//	    - to: box
//	      at: "fade+=0.25"
//	      props: {opacity: 0}
//
// Build turns a parsed scene into a live timeline on an engine.
package scene

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/choreo/pkg/animation"
	"github.com/go-drift/choreo/pkg/errors"
)

// EngineVersion is the newest scene format this package reads. Scenes with
// the same major version and an equal or older minor version load.
const EngineVersion = "v1.1.0"

// Scene is a parsed scene file.
type Scene struct {
	Version  string                    `yaml:"version"`
	Engine   EngineConfig              `yaml:"engine,omitempty"`
	Targets  map[string]map[string]any `yaml:"targets"`
	Timeline TimelineConfig            `yaml:"timeline"`
}

// EngineConfig contains engine settings.
type EngineConfig struct {
	FPS          int            `yaml:"fps,omitempty"`
	LagThreshold string         `yaml:"lagThreshold,omitempty"`
	AdjustedLag  string         `yaml:"adjustedLag,omitempty"`
	Defaults     DefaultsConfig `yaml:"defaults,omitempty"`
}

// DefaultsConfig holds the vars children inherit when they leave them unset.
type DefaultsConfig struct {
	Duration float64 `yaml:"duration,omitempty"`
	Ease     string  `yaml:"ease,omitempty"`
}

// TimelineConfig describes the scene timeline.
type TimelineConfig struct {
	ID          string         `yaml:"id,omitempty"`
	Repeat      int            `yaml:"repeat,omitempty"`
	RepeatDelay float64        `yaml:"repeatDelay,omitempty"`
	Yoyo        bool           `yaml:"yoyo,omitempty"`
	Paused      bool           `yaml:"paused,omitempty"`
	Defaults    DefaultsConfig `yaml:"defaults,omitempty"`
	Steps       []Step         `yaml:"steps"`
}

// Step is one timeline entry. Exactly one of To, From, FromTo, Set, Label
// or Call must be given.
type Step struct {
	To     TargetList `yaml:"to,omitempty"`
	From   TargetList `yaml:"from,omitempty"`
	FromTo TargetList `yaml:"fromTo,omitempty"`
	Set    TargetList `yaml:"set,omitempty"`
	Label  string     `yaml:"label,omitempty"`
	Call   string     `yaml:"call,omitempty"`

	// At is a position string such as "+=0.5", "<" or "intro+=1".
	At string `yaml:"at,omitempty"`

	ID          string             `yaml:"id,omitempty"`
	Props       map[string]any     `yaml:"props,omitempty"`
	Start       map[string]any     `yaml:"start,omitempty"`
	Duration    float64            `yaml:"duration,omitempty"`
	Delay       float64            `yaml:"delay,omitempty"`
	Ease        string             `yaml:"ease,omitempty"`
	Repeat      int                `yaml:"repeat,omitempty"`
	RepeatDelay float64            `yaml:"repeatDelay,omitempty"`
	Yoyo        bool               `yaml:"yoyo,omitempty"`
	Overwrite   string             `yaml:"overwrite,omitempty"`
	Snap        map[string]float64 `yaml:"snap,omitempty"`
	Stagger     *StaggerConfig     `yaml:"stagger,omitempty"`
	Keyframes   []Step             `yaml:"keyframes,omitempty"`
}

// StaggerConfig mirrors animation.Stagger. From is "start", "center", "end",
// "edges", "random" or an element index.
type StaggerConfig struct {
	Each        float64 `yaml:"each,omitempty"`
	Amount      float64 `yaml:"amount,omitempty"`
	From        string  `yaml:"from,omitempty"`
	Grid        []int   `yaml:"grid,omitempty"`
	Axis        string  `yaml:"axis,omitempty"`
	Ease        string  `yaml:"ease,omitempty"`
	Repeat      int     `yaml:"repeat,omitempty"`
	RepeatDelay float64 `yaml:"repeatDelay,omitempty"`
	Yoyo        bool    `yaml:"yoyo,omitempty"`
}

// TargetList names one or more targets. In YAML it is a single name or a
// sequence of names.
type TargetList []string

// UnmarshalYAML accepts a scalar or a sequence.
func (l *TargetList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = TargetList{node.Value}
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return err
		}
		*l = names
		return nil
	}
	return fmt.Errorf("line %d: targets must be a name or a list of names", node.Line)
}

// Kind returns the step kind: "to", "from", "fromTo", "set", "label",
// "call", or "" when none or several are given.
func (s *Step) Kind() string {
	var kinds []string
	if len(s.To) > 0 {
		kinds = append(kinds, "to")
	}
	if len(s.From) > 0 {
		kinds = append(kinds, "from")
	}
	if len(s.FromTo) > 0 {
		kinds = append(kinds, "fromTo")
	}
	if len(s.Set) > 0 {
		kinds = append(kinds, "set")
	}
	if s.Label != "" {
		kinds = append(kinds, "label")
	}
	if s.Call != "" {
		kinds = append(kinds, "call")
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// Targets returns the target names of a tween step.
func (s *Step) Targets() []string {
	switch {
	case len(s.To) > 0:
		return s.To
	case len(s.From) > 0:
		return s.From
	case len(s.FromTo) > 0:
		return s.FromTo
	}
	return s.Set
}

// Load reads and parses a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configError("scene.Load", fmt.Errorf("failed to read %s: %w", path, err))
	}
	return Parse(data)
}

// Parse decodes and validates a scene. Unknown keys are errors so typos do
// not silently drop settings.
func Parse(data []byte) (*Scene, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Scene
	if err := dec.Decode(&s); err != nil {
		return nil, configError("scene.Parse", fmt.Errorf("failed to parse scene: %w", err))
	}
	normalizeTargets(s.Targets)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// normalizeTargets turns integer YAML values into floats so maps animate
// smoothly instead of rounding.
func normalizeTargets(targets map[string]map[string]any) {
	for _, props := range targets {
		for k, v := range props {
			switch n := v.(type) {
			case int:
				props[k] = float64(n)
			case int64:
				props[k] = float64(n)
			case uint64:
				props[k] = float64(n)
			}
		}
	}
}

// Validate checks the version, engine settings and every step.
func (s *Scene) Validate() error {
	if err := checkVersion(s.Version); err != nil {
		return err
	}
	if _, _, err := s.Engine.lag(); err != nil {
		return err
	}
	for i := range s.Timeline.Steps {
		if err := s.validateStep(&s.Timeline.Steps[i], fmt.Sprintf("steps[%d]", i), false); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scene) validateStep(st *Step, path string, keyframe bool) error {
	if keyframe {
		if st.Kind() != "" || len(st.Props) == 0 {
			return configError("scene.Validate", fmt.Errorf("%s: keyframes take props only", path))
		}
		return nil
	}
	kind := st.Kind()
	if kind == "" {
		return configError("scene.Validate", fmt.Errorf("%s: exactly one of to, from, fromTo, set, label or call is required", path))
	}
	if st.At != "" {
		if _, err := animation.ParsePosition(st.At); err != nil {
			return configError("scene.Validate", fmt.Errorf("%s: %w", path, err))
		}
	}
	if st.Ease != "" {
		if _, err := animation.ParseEase(st.Ease); err != nil {
			return configError("scene.Validate", fmt.Errorf("%s: %w", path, err))
		}
	}
	if _, err := parseOverwrite(st.Overwrite); err != nil {
		return configError("scene.Validate", fmt.Errorf("%s: %w", path, err))
	}
	if st.Stagger != nil {
		if _, err := parseStaggerFrom(st.Stagger.From); err != nil {
			return configError("scene.Validate", fmt.Errorf("%s: %w", path, err))
		}
		if n := len(st.Stagger.Grid); n != 0 && n != 2 {
			return configError("scene.Validate", fmt.Errorf("%s: stagger grid needs [rows, cols]", path))
		}
	}
	switch kind {
	case "label", "call":
		return nil
	}
	for _, name := range st.Targets() {
		if _, ok := s.Targets[name]; !ok {
			return configError("scene.Validate", fmt.Errorf("%s: unknown target %q", path, name))
		}
	}
	if len(st.Props) == 0 && len(st.Keyframes) == 0 {
		return configError("scene.Validate", fmt.Errorf("%s: %s needs props or keyframes", path, kind))
	}
	for i := range st.Keyframes {
		if err := s.validateStep(&st.Keyframes[i], fmt.Sprintf("%s.keyframes[%d]", path, i), true); err != nil {
			return err
		}
	}
	return nil
}

// TargetNames returns the declared target names, sorted.
func (s *Scene) TargetNames() []string {
	names := make([]string, 0, len(s.Targets))
	for name := range s.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EngineOptions returns the engine settings of the scene as options.
func (s *Scene) EngineOptions() []animation.Option {
	var opts []animation.Option
	if s.Engine.FPS > 0 {
		opts = append(opts, animation.WithFPS(s.Engine.FPS))
	}
	if threshold, adjusted, _ := s.Engine.lag(); threshold != 0 || adjusted != 0 {
		opts = append(opts, animation.WithLagSmoothing(threshold, adjusted))
	}
	if d := s.Engine.Defaults; d.Duration != 0 || d.Ease != "" {
		opts = append(opts, animation.WithDefaults(animation.Vars{Duration: d.Duration, Ease: d.Ease}))
	}
	return opts
}

func (c EngineConfig) lag() (threshold, adjusted time.Duration, err error) {
	parse := func(field, s string) (time.Duration, error) {
		if s == "" {
			return 0, nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, configError("scene.Validate", fmt.Errorf("engine.%s: %w", field, err))
		}
		return d, nil
	}
	if threshold, err = parse("lagThreshold", c.LagThreshold); err != nil {
		return 0, 0, err
	}
	if adjusted, err = parse("adjustedLag", c.AdjustedLag); err != nil {
		return 0, 0, err
	}
	return threshold, adjusted, nil
}

// checkVersion accepts versions with or without a leading "v".
func checkVersion(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return configError("scene.Validate", fmt.Errorf("version is required"))
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return configError("scene.Validate", fmt.Errorf("invalid version %q", v))
	}
	if semver.Major(v) != semver.Major(EngineVersion) || semver.Compare(v, EngineVersion) > 0 {
		return configError("scene.Validate", fmt.Errorf("scene version %s is not supported by engine %s", v, EngineVersion))
	}
	return nil
}

func parseOverwrite(s string) (animation.Overwrite, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return animation.OverwriteDefault, nil
	case "auto":
		return animation.OverwriteAuto, nil
	case "none", "false":
		return animation.OverwriteNone, nil
	case "all", "true":
		return animation.OverwriteAll, nil
	}
	return animation.OverwriteDefault, fmt.Errorf("unknown overwrite mode %q", s)
}

func parseStaggerFrom(s string) (animation.StaggerFrom, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "start":
		return animation.StaggerStart, nil
	case "center":
		return animation.StaggerCenter, nil
	case "end":
		return animation.StaggerEnd, nil
	case "edges":
		return animation.StaggerEdges, nil
	case "random":
		return animation.StaggerRandom, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("unknown stagger origin %q", s)
	}
	return animation.StaggerIndex(i), nil
}

func configError(op string, err error) error {
	return &errors.Warning{Op: op, Kind: errors.KindConfig, Err: err}
}
