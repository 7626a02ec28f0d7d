package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"storydoc/internal/config"
	"storydoc/internal/cursor"
	"storydoc/internal/parser"
	"storydoc/internal/story"
)

var (
	playChapter int
	playGroup   int
	playNode    int
)

func playCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play [file.sdc]",
		Short: "Step through a story document interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPlay,
	}
	cmd.Flags().IntVar(&playChapter, "chapter", 1, "Chapter id to start at")
	cmd.Flags().IntVar(&playGroup, "group", 1, "Group id to start at")
	cmd.Flags().IntVar(&playNode, "node", 0, "Node id to start at (defaults to the group's start node)")
	return cmd
}

func runPlay(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}

	// storydoc.yaml supplies defaults; explicit flags and the file argument
	// always win.
	if cfg, err := config.LoadProjectConfig("storydoc.yaml"); err == nil {
		if path == "" {
			path = cfg.Play.Story
		}
		if !cmd.Flags().Changed("chapter") && cfg.Play.Chapter != 0 {
			playChapter = cfg.Play.Chapter
		}
		if !cmd.Flags().Changed("group") && cfg.Play.Group != 0 {
			playGroup = cfg.Play.Group
		}
		if !cmd.Flags().Changed("node") && cfg.Play.Node != 0 {
			playNode = cfg.Play.Node
		}
	}
	if path == "" {
		return fmt.Errorf("no story document given and no play.story configured")
	}

	st, err := parser.ParseFile(path)
	if err != nil {
		return err
	}

	node := playNode
	if node == 0 {
		g := st.Group(playGroup)
		if g == nil {
			return fmt.Errorf("group %d does not exist", playGroup)
		}
		node = g.Nodes.Start
	}

	host := newHost(st)
	c := cursor.New(st)
	c.Start(playChapter, playGroup, node)

	in := bufio.NewScanner(os.Stdin)
	for {
		switch res := c.Step().(type) {
		case cursor.Dialogue:
			for _, line := range res.Lines {
				fmt.Fprintf(os.Stdout, "%s: %s\n", line.Speaker, line.Text)
			}
		case cursor.Action:
			// Code blocks are opaque to the engine; show them, don't run them.
			fmt.Fprintf(os.Stdout, "[code] %s\n", strings.TrimSpace(res.Code))
		case cursor.Event:
			host.apply(res)
		case cursor.Choice:
			for _, opt := range res.Options {
				fmt.Fprintf(os.Stdout, "  %d) %s\n", opt.Index, opt.Text)
			}
			index, err := readChoice(in, len(res.Options))
			if err != nil {
				return err
			}
			if err := c.SelectChoice(index); err != nil {
				return err
			}
		case cursor.Transition:
			fmt.Fprintf(os.Stdout, "-- %s %d --\n", res.Kind, res.Target)
		case cursor.End:
			fmt.Fprintf(os.Stdout, "The end (%s).\n", res.Reason)
			host.printSummary()
			return nil
		}
	}
}

func readChoice(in *bufio.Scanner, count int) (int, error) {
	for {
		fmt.Fprint(os.Stdout, "> ")
		if !in.Scan() {
			return 0, fmt.Errorf("input closed")
		}
		index, err := strconv.Atoi(strings.TrimSpace(in.Text()))
		if err == nil && index >= 0 && index < count {
			return index, nil
		}
		fmt.Fprintf(os.Stdout, "Pick a number between 0 and %d.\n", count-1)
	}
}

// host is the game-state bookkeeper the engine describes effects to. It
// keeps variable values and per-character states outside the story graph.
type host struct {
	st        *story.Story
	variables map[string]story.Value
	states    map[string]map[string]bool
}

func newHost(st *story.Story) *host {
	h := &host{
		st:        st,
		variables: make(map[string]story.Value),
		states:    make(map[string]map[string]bool),
	}
	for _, v := range st.Variables {
		h.variables[v.Name] = v.Default
	}
	return h
}

func (h *host) apply(ev cursor.Event) {
	switch payload := ev.Payload.(type) {
	case cursor.VariableAdjustment:
		h.adjust(payload)
	case cursor.StateChange:
		if ev.Kind == story.EventAddState {
			h.addState(payload.Character, payload.State)
		} else {
			h.removeState(payload.Character, payload.State)
		}
	case cursor.StoryProgress:
		// Position already moved by the cursor; nothing to book-keep.
	case cursor.ListChange:
		for _, name := range payload.Characters {
			for _, mod := range payload.Modifications {
				fmt.Fprintf(os.Stdout, "[%s] %s %s %s = %s\n",
					name, payload.List, mod.Field, mod.Op, mod.Value)
			}
		}
	}
}

func (h *host) adjust(adj cursor.VariableAdjustment) {
	current := h.variables[adj.Variable]
	switch adj.Op {
	case cursor.OpIncrement:
		amount, _ := adj.Value.(story.FloatValue)
		switch v := current.(type) {
		case story.IntValue:
			h.variables[adj.Variable] = story.IntValue(int64(float64(v) + float64(amount)))
		case story.FloatValue:
			h.variables[adj.Variable] = story.FloatValue(float64(v) + float64(amount))
		}
	case cursor.OpSet:
		h.variables[adj.Variable] = adj.Value
	case cursor.OpToggle:
		if v, ok := current.(story.BoolValue); ok {
			h.variables[adj.Variable] = story.BoolValue(!v)
		}
	}
}

func (h *host) addState(character, state string) {
	if h.states[character] == nil {
		h.states[character] = make(map[string]bool)
	}
	h.states[character][state] = true
}

func (h *host) removeState(character, state string) {
	delete(h.states[character], state)
}

func (h *host) printSummary() {
	if len(h.variables) > 0 {
		fmt.Fprintln(os.Stdout, "Variables:")
		for _, v := range h.st.Variables {
			fmt.Fprintf(os.Stdout, "  %s = %s\n", v.Name, h.variables[v.Name])
		}
	}
	for character, states := range h.states {
		if len(states) == 0 {
			continue
		}
		fmt.Fprintf(os.Stdout, "States for %s:", character)
		for state := range states {
			fmt.Fprintf(os.Stdout, " %s", state)
		}
		fmt.Fprintln(os.Stdout, "")
	}
}
