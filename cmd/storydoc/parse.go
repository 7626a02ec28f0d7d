package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storydoc/internal/parser"
	"storydoc/internal/story"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file.sdc>",
		Short: "Parse a story document and print its contents",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	st, err := parser.ParseFile(args[0])
	if err != nil {
		return err
	}

	printGlobalVars(st)
	printTagDefinitions(st)
	printChapters(st)
	printGroups(st)
	printNodes(st)
	return nil
}

func printGlobalVars(st *story.Story) {
	fmt.Fprintln(os.Stdout, "=== GLOBAL VARIABLES ===")
	for _, v := range st.Variables {
		fmt.Fprintf(os.Stdout, "Variable: %s\n", v.Name)
		fmt.Fprintf(os.Stdout, "  Type: %s\n", v.Type)
		fmt.Fprintf(os.Stdout, "  Default: %s\n\n", v.Default)
	}
}

func printTagDefinitions(st *story.Story) {
	fmt.Fprintln(os.Stdout, "=== TAG DEFINITIONS ===")
	for _, t := range st.Tags {
		fmt.Fprintf(os.Stdout, "Tag: %s\n", t.Name)
		fmt.Fprintf(os.Stdout, "  Type: %s\n", t.Kind)
		if t.Color != "" {
			fmt.Fprintf(os.Stdout, "  Color: %s\n", t.Color)
		}
		if len(t.Keys) > 0 {
			fmt.Fprintf(os.Stdout, "  Keys: %v\n", t.Keys)
		}
		fmt.Fprintln(os.Stdout, "")
	}
}

func printChapters(st *story.Story) {
	fmt.Fprintln(os.Stdout, "=== CHAPTERS ===")
	for _, ch := range st.Chapters {
		fmt.Fprintf(os.Stdout, "Chapter %d: %s\n", ch.ID, ch.Name)
	}
	fmt.Fprintln(os.Stdout, "")
}

func printGroups(st *story.Story) {
	fmt.Fprintln(os.Stdout, "=== GROUPS ===")
	for i := range st.Groups {
		g := &st.Groups[i]
		fmt.Fprintf(os.Stdout, "Group %d: %s\n", g.ID, g.Name)
		fmt.Fprintf(os.Stdout, "  Chapter: %d\n", g.ChapterID)
		if g.Content != "" {
			fmt.Fprintf(os.Stdout, "  Content: %s\n", g.Content)
		}
		for _, tag := range g.Tags {
			if tag.SelectedKey != "" {
				fmt.Fprintf(os.Stdout, "  Tag: %s (%s: %s)\n", tag.Name, tag.SelectedKey, tag.Value)
			} else {
				fmt.Fprintf(os.Stdout, "  Tag: %s\n", tag.Name)
			}
		}
		fmt.Fprintf(os.Stdout, "  Nodes: start=%d, end=%d, points=%d\n\n",
			g.Nodes.Start, g.Nodes.End, len(g.Nodes.Points))
	}
}

func printNodes(st *story.Story) {
	fmt.Fprintln(os.Stdout, "=== NODES ===")
	for i := range st.Nodes {
		n := &st.Nodes[i]
		fmt.Fprintf(os.Stdout, "Node %d: %s\n", n.ID, n.Title)
		fmt.Fprintf(os.Stdout, "  Timeline items: %d\n", len(n.Timeline))
		for _, item := range n.Timeline {
			switch it := item.(type) {
			case story.Dialogue:
				fmt.Fprintf(os.Stdout, "    Dialogue %d:\n", it.Label)
				for _, line := range it.Lines {
					fmt.Fprintf(os.Stdout, "      %s: %q\n", line.Speaker, line.Text)
				}
			case story.Action:
				fmt.Fprintf(os.Stdout, "    Action %d: %s\n", it.Label, describeAction(it.Body))
			}
		}
		fmt.Fprintln(os.Stdout, "")
	}
}

func describeAction(body story.ActionBody) string {
	switch b := body.(type) {
	case story.CodeAction:
		return fmt.Sprintf("CODE (length=%d)", len(b.Code))
	case story.GotoAction:
		return fmt.Sprintf("GOTO node %d", b.Node)
	case story.ExitAction:
		return fmt.Sprintf("EXIT %s", b.Target)
	case story.EnterAction:
		return fmt.Sprintf("ENTER group %d", b.Group)
	case story.ChoiceAction:
		return fmt.Sprintf("CHOICE (%d options)", len(b.Options))
	case story.EventAction:
		return fmt.Sprintf("EVENT %s", b.Event.EventKind())
	}
	return "UNKNOWN"
}
