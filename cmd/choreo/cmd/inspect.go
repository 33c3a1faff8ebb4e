package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-drift/choreo/pkg/animation"
)

func init() {
	RegisterCommand(&Command{
		Name:  "inspect",
		Short: "Show the timeline layout of a scene",
		Long: `Build a scene and print its timeline tree: every child with its
kind, targets and start and end times in parent time, followed by the
labels. Staggered and keyframed tweens list their generated children
one level deeper.

Usage:
  choreo inspect intro.yaml`,
		Usage: "choreo inspect <scene.yaml>",
		Run:   runInspect,
	})
}

func runInspect(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one scene file is required\n\nUsage: choreo inspect <scene.yaml>")
	}
	return inspect(stdout, args[0])
}

func inspect(w io.Writer, path string) error {
	s, err := openScene(path)
	if err != nil {
		return err
	}
	defer s.close()

	tl := s.built.Timeline
	name := tl.ID()
	if name == "" {
		name = "(timeline)"
	}
	fmt.Fprintf(w, "%s %s..%s duration=%s repeat=%d\n", name,
		formatNumber(tl.StartTime()), formatNumber(tl.EndTime(true)),
		formatNumber(tl.TotalDuration()), tl.Repeat())
	for _, child := range tl.Children(false, true, true) {
		s.printChild(w, child, 1)
	}

	labels := tl.Labels()
	if len(labels) == 0 {
		return nil
	}
	names := make([]string, 0, len(labels))
	for label := range labels {
		names = append(names, label)
	}
	sort.Slice(names, func(i, j int) bool {
		if labels[names[i]] != labels[names[j]] {
			return labels[names[i]] < labels[names[j]]
		}
		return names[i] < names[j]
	})
	fmt.Fprintln(w, "labels:")
	for _, label := range names {
		fmt.Fprintf(w, "  %-14s %s\n", label, formatNumber(labels[label]))
	}
	return nil
}

func (s *session) printChild(w io.Writer, child animation.Animation, depth int) {
	kind, _ := child.Data().(string)
	var targets []string
	var nested *animation.Timeline
	switch c := child.(type) {
	case *animation.Tween:
		for _, t := range c.Targets() {
			if name := s.built.TargetName(t); name != "" {
				targets = append(targets, name)
			}
		}
		nested = c.Nested()
		if kind == "" && len(c.Targets()) == 0 {
			kind = "call"
		}
	case *animation.Timeline:
		nested = c
		if kind == "" {
			kind = "timeline"
		}
	}
	if kind == "" {
		kind = "tween"
	}
	if id := child.ID(); id != "" {
		kind += "#" + id
	}

	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%-*s %-14s %s..%s\n", indent, 20-2*depth, kind,
		strings.Join(targets, ","), formatNumber(child.StartTime()), formatNumber(child.EndTime(true)))
	if nested != nil {
		for _, c := range nested.Children(false, true, true) {
			s.printChild(w, c, depth+1)
		}
	}
}
