package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/dshills/blockstorm/internal/engine"
	"github.com/dshills/blockstorm/internal/outline"
	"github.com/dshills/blockstorm/internal/plugin/blocks"
)

// baseline names the snapshot taken before an edit.
const baseline = "baseline"

// session is one loaded document with the block plugin installed.
type session struct {
	engine *engine.Engine
	logger *zap.Logger
}

// open parses the outline at path and builds an engine from the config.
func (c *cli) open(path string) (*session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gen, err := blocks.GeneratorForFormat(c.cfg.Blocks().IDFormat)
	if err != nil {
		return nil, err
	}
	doc, err := outline.ParseReader(f, gen)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	editor := c.cfg.Editor()
	e, err := engine.NewFromNode(doc,
		engine.WithVoidTypes(editor.VoidTypes...),
		engine.WithInlineTypes(editor.InlineTypes...),
		engine.WithMaxChanges(editor.MaxChanges),
		engine.WithLogger(c.logger.Named("engine")),
	)
	if err != nil {
		return nil, err
	}

	if err := e.RegisterHook(engine.NewAuditHook(c.logger.Named("audit"))); err != nil {
		return nil, err
	}
	plugin := blocks.New(blocks.WithGenerator(gen), blocks.WithLogger(c.logger.Named("blocks")))
	if err := plugin.Install(e); err != nil {
		return nil, err
	}

	e.CreateSnapshot(baseline)
	c.logger.Debug("document opened",
		zap.String("path", path),
		zap.Int("nodes", e.NodeCount()),
		zap.Strings("moveChain", e.MoveHookNames()),
		zap.Strings("liftChain", e.LiftHookNames()),
	)
	return &session{engine: e, logger: c.logger}, nil
}

// print writes the tree and, after an edit, the identifier delta.
func (s *session) print(w io.Writer, showIDs bool, edited bool) error {
	if err := outline.Render(w, s.engine.Snapshot(), outline.RenderOptions{ShowPaths: true, ShowIDs: showIDs}); err != nil {
		return err
	}
	if !edited {
		return nil
	}
	delta, err := s.engine.DiffSinceSnapshot(baseline)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "\nrevision %d, %s\nblocks: %d added, %d removed, %d kept\ntexts: %d added, %d removed\n",
		s.engine.Revision(), s.engine.ChangesGroupedSince(0).Summary(),
		len(delta.AddedBlocks), len(delta.RemovedBlocks), len(delta.KeptBlocks),
		len(delta.AddedTexts), len(delta.RemovedTexts),
	)
	return err
}
