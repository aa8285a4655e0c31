package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dgallion1/uidump/internal/device"
	"github.com/dgallion1/uidump/internal/hierarchy"
	"github.com/dgallion1/uidump/internal/query"
	"github.com/dgallion1/uidump/internal/report"
	"github.com/dgallion1/uidump/internal/uinode"
	"github.com/spf13/cobra"
)

func newTreeCmd(load loader) *cobra.Command {
	var withXPath, indexed bool
	cmd := &cobra.Command{
		Use:   "tree [dump.xml]",
		Short: "Print every node's ID and display label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := load(cmd, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			tree.Walk(func(id string, n *uinode.Node) bool {
				depth := strings.Count(id, ".")
				fmt.Fprintf(out, "%s%s  %s", strings.Repeat("  ", depth), id, n.DisplayName())
				if withXPath || indexed {
					xp, err := n.XPath()
					if indexed {
						xp, err = n.IndexedXPath()
					}
					if err == nil {
						fmt.Fprintf(out, "  %s", xp)
					}
				}
				fmt.Fprintln(out)
				return true
			})
			for _, w := range tree.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withXPath, "xpath", false, "Append the selector of each node")
	cmd.Flags().BoolVar(&indexed, "indexed", false, "Append the selector with an @index predicate")
	return cmd
}

func newNodeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "node [dump.xml] [node-id]",
		Short: "Show one node's attributes and selectors",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := load(cmd, args[0])
			if err != nil {
				return err
			}
			n, err := lookup(tree, args[1])
			if err != nil {
				return err
			}
			printNode(cmd.OutOrStdout(), tree, n)
			return nil
		},
	}
}

func printNode(out io.Writer, tree *hierarchy.Tree, n *uinode.Node) {
	fmt.Fprintf(out, "id:            %s\n", tree.ID(n))
	fmt.Fprintf(out, "label:         %s\n", n.DisplayName())
	if n.HasBounds {
		r := n.Rect
		fmt.Fprintf(out, "rect:          x=%d y=%d w=%d h=%d\n", r.X, r.Y, r.Width, r.Height)
	}
	if xp, err := n.XPath(); err == nil {
		fmt.Fprintf(out, "xpath:         %s\n", xp)
	} else {
		fmt.Fprintf(out, "xpath:         (%v)\n", err)
	}
	if xp, err := n.IndexedXPath(); err == nil {
		fmt.Fprintf(out, "indexed xpath: %s\n", xp)
	} else {
		fmt.Fprintf(out, "indexed xpath: (%v)\n", err)
	}
	fmt.Fprintln(out, "attributes:")
	for _, p := range n.AttributesSnapshot() {
		fmt.Fprintf(out, "  %s=%q\n", p.Name, p.Value)
	}
}

func newPositionCmd(load loader) *cobra.Command {
	var (
		resolution string
		adb        device.ADB
		timeout    time.Duration
		retries    int
	)
	cmd := &cobra.Command{
		Use:   "position [dump.xml] [node-id]",
		Short: "Print a node's center and its position as a share of the screen",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := load(cmd, args[0])
			if err != nil {
				return err
			}
			n, err := lookup(tree, args[1])
			if err != nil {
				return err
			}
			var rp uinode.ResolutionProvider = &device.Retrying{
				Provider: &adb,
				Attempts: retries,
				Base:     500 * time.Millisecond,
				Timeout:  timeout,
			}
			if resolution != "" {
				rp = device.Static{Value: resolution}
			}
			summary, err := n.PositionSummary(cmd.Context(), rp)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&resolution, "resolution", "", "Screen resolution as WIDTHxHEIGHT instead of asking the device")
	cmd.Flags().StringVar(&adb.Path, "adb", "adb", "Path to the adb binary")
	cmd.Flags().StringVar(&adb.Serial, "serial", "", "Device serial passed to adb -s")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Timeout per device query")
	cmd.Flags().IntVar(&retries, "retries", 3, "Device query attempts")
	return cmd
}

func newQueryCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "query [dump.xml] [jsonpath]",
		Short: "Evaluate a JSONPath expression against the dump document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := load(cmd, args[0])
			if err != nil {
				return err
			}
			results, err := query.Run(tree, args[1])
			if err != nil {
				return err
			}
			if results == nil {
				results = []any{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(results)
		},
	}
}

func newReportCmd(load loader) *cobra.Command {
	var (
		asHTML bool
		title  string
	)
	cmd := &cobra.Command{
		Use:   "report [dump.xml]",
		Short: "Render the hierarchy as a markdown or HTML outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := load(cmd, args[0])
			if err != nil {
				return err
			}
			if title == "" {
				title = args[0]
			}
			if !asHTML {
				_, err = io.WriteString(cmd.OutOrStdout(), report.Markdown(tree, title))
				return err
			}
			out, err := report.HTML(tree, title)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "Render HTML instead of markdown")
	cmd.Flags().StringVar(&title, "title", "", "Report title (defaults to the file name)")
	return cmd
}

func lookup(tree *hierarchy.Tree, id string) (*uinode.Node, error) {
	n := tree.Node(id)
	if n == nil {
		return nil, fmt.Errorf("no node %q (dump has %d nodes)", id, tree.Len())
	}
	return n, nil
}
