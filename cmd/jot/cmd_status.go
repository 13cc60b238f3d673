package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jotvcs/jot/pkg/repo"
)

func newStatusCmd() *cobra.Command {
	var porcelain bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the working tree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}

			st, err := r.Status()
			if err != nil {
				return err
			}

			if porcelain {
				printPorcelainStatus(cmd.OutOrStdout(), st)
			} else {
				printHumanStatus(cmd.OutOrStdout(), st)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&porcelain, "porcelain", false, "machine-readable output")

	return cmd
}

// printPorcelainStatus renders two-column rows: the first column is the
// staged-vs-HEAD state (A or space), the second the disk-vs-staged state
// (M, D or space). Rows that would be all blank are skipped; untracked
// paths follow as "?? <path>". A path staged for the first time and then
// removed from disk renders jointly as "AD".
func printPorcelainStatus(out io.Writer, st *repo.Status) {
	added := toSet(st.Added)
	modified := toSet(st.Modified)
	deleted := toSet(st.Deleted)

	union := make(map[string]bool, len(added)+len(modified)+len(deleted))
	for p := range added {
		union[p] = true
	}
	for p := range modified {
		union[p] = true
	}
	for p := range deleted {
		union[p] = true
	}
	paths := make([]string, 0, len(union))
	for p := range union {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		col1 := byte(' ')
		if added[p] {
			col1 = 'A'
		}
		col2 := byte(' ')
		switch {
		case modified[p]:
			col2 = 'M'
		case deleted[p]:
			col2 = 'D'
		}
		if col1 == ' ' && col2 == ' ' {
			continue
		}
		fmt.Fprintf(out, "%c%c %s\n", col1, col2, p)
	}

	for _, p := range st.Untracked {
		fmt.Fprintf(out, "?? %s\n", p)
	}
}

func printHumanStatus(out io.Writer, st *repo.Status) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	hasChanges := false

	if len(st.Added) > 0 {
		fmt.Fprintln(out, "Changes to be committed:")
		for _, p := range st.Added {
			fmt.Fprintln(out, green("  new file:   "+p))
		}
		hasChanges = true
	}

	if len(st.Modified) > 0 || len(st.Deleted) > 0 {
		fmt.Fprintln(out, "Changes not staged for commit:")
		for _, p := range st.Modified {
			fmt.Fprintln(out, red("  modified:   "+p))
		}
		for _, p := range st.Deleted {
			fmt.Fprintln(out, red("  deleted:    "+p))
		}
		hasChanges = true
	}

	if len(st.Untracked) > 0 {
		fmt.Fprintln(out, "Untracked files:")
		for _, p := range st.Untracked {
			fmt.Fprintln(out, red("  "+p))
		}
		hasChanges = true
	}

	if !hasChanges {
		fmt.Fprintln(out, "nothing to commit, working tree clean")
	}
}

func toSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return set
}
