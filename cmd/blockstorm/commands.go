package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/blockstorm/internal/engine"
	"github.com/dshills/blockstorm/internal/engine/path"
	"github.com/dshills/blockstorm/internal/plugin/lua"
)

func newTreeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <outline.md>",
		Short: "Print the block tree of an outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(args[0])
			if err != nil {
				return err
			}
			return s.print(out(cmd), c.showIDs, false)
		},
	}
}

func newLiftCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "lift <outline.md> <path>",
		Short: "Lift the block at path one level up",
		Long: `Lift the block at path out of its parent.

An only child replaces its parent, a first child moves before it, a last
child moves after it, and a middle child moves after it taking its
following siblings along as children.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := path.Parse(args[1])
			if err != nil {
				return err
			}
			s, err := c.open(args[0])
			if err != nil {
				return err
			}
			err = s.engine.Update(func(tx *engine.Tx) error {
				return tx.LiftNodes(engine.LiftOptions{At: engine.AtPath(at), Match: engine.MatchPath(at)})
			})
			if err != nil {
				return err
			}
			return s.print(out(cmd), c.showIDs, true)
		},
	}
}

func newMoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "move <outline.md> <from> <to>",
		Short: "Move the block at from so it ends up at to",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := path.Parse(args[1])
			if err != nil {
				return err
			}
			to, err := path.Parse(args[2])
			if err != nil {
				return err
			}
			s, err := c.open(args[0])
			if err != nil {
				return err
			}
			err = s.engine.Update(func(tx *engine.Tx) error {
				return tx.MoveNodes(engine.MoveOptions{At: engine.AtPath(from), Match: engine.MatchPath(from), To: to})
			})
			if err != nil {
				return err
			}
			return s.print(out(cmd), c.showIDs, true)
		},
	}
}

func newRunCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "run <outline.md> <script.lua>",
		Short: "Run a Lua script against an outline",
		Long: `Run a Lua script against an outline.

The script sees the document through the doc module (also a global):
doc.tree, doc.node, doc.block_id, doc.child_count, doc.find,
doc.revision, doc.select, doc.lift, doc.move, doc.remove, doc.set and
doc.batch. print output goes to the log.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(args[0])
			if err != nil {
				return err
			}
			settings := c.cfg.Lua()
			state, err := lua.NewState(
				lua.WithExecutionTimeout(settings.Timeout),
				lua.WithInstructionLimit(int64(settings.InstructionLimit)),
				lua.WithLogger(c.logger.Named("lua")),
			)
			if err != nil {
				return err
			}
			defer state.Close()

			state.AttachDocument(s.engine)
			if err := state.DoFile(cmd.Context(), args[1]); err != nil {
				return err
			}
			return s.print(out(cmd), c.showIDs, true)
		},
	}
}
