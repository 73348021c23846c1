package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"go-task-organizer/internal/organizer"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the folder tree with its tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.shutdown(ctx)

		tree, err := a.org.Tree()
		if err != nil {
			return err
		}
		printTree(cmd.OutOrStdout(), tree, 0)
		return nil
	},
}

func printTree(w io.Writer, n *organizer.TreeNode, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s/\n", indent, n.Folder.Name)
	for _, t := range n.Tasks {
		mark := " "
		if t.IsDone {
			mark = "x"
		}
		line := fmt.Sprintf("%s  [%s] %s (%s)", indent, mark, t.Name, t.Priority)
		if t.DueDate != nil {
			line += " due " + t.DueDate.Format("2006-01-02")
		}
		fmt.Fprintln(w, line)
	}
	for _, child := range n.Children {
		printTree(w, child, depth+1)
	}
}
