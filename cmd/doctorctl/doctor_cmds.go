package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"doctor-registry/internal/editor"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, withCode(exitUsage, fmt.Errorf("invalid doctor id %q", s))
	}
	return id, nil
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one doctor profile as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := a.reader.GetDoctor(ctx, id)
			if err != nil {
				return withCode(exitAPI, err)
			}
			return writeJSONLine(cmd.OutOrStdout(), d)
		},
	}
}

func newListCmd() *cobra.Command {
	var skip, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List doctors, one JSON object per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			if skip < 0 || limit <= 0 {
				return withCode(exitUsage, fmt.Errorf("--skip must be >= 0 and --limit > 0"))
			}
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			page, err := a.reader.ListDoctors(ctx, skip, limit)
			if err != nil {
				return withCode(exitAPI, err)
			}
			out := cmd.OutOrStdout()
			for i := range page.Doctores {
				if err := writeJSONLine(out, &page.Doctores[i]); err != nil {
					return err
				}
			}
			return writeJSONLine(out, map[string]any{
				"total_count": page.TotalCount,
				"skip":        skip,
				"returned":    len(page.Doctores),
			})
		},
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "Number of records to skip")
	cmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	return cmd
}

func newEditCmd() *cobra.Command {
	var sets []string
	var clues string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a doctor profile and save it",
		Long: "Applies --set field=value pairs in order (changing estatus clears the fields\n" +
			"that no longer apply), optionally fills the facility from --clues, then saves.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if len(sets) == 0 && clues == "" {
				return withCode(exitUsage, fmt.Errorf("nothing to change: use --set or --clues"))
			}
			assignments, err := parseAssignments(sets)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			policy, err := editor.ParseHiddenFieldPolicy(a.cfg.Editor.HiddenFields)
			if err != nil {
				return withCode(exitUsage, err)
			}

			// 编辑总是基于后端最新数据，不读缓存
			record, err := a.api.GetDoctor(ctx, id)
			if err != nil {
				return withCode(exitAPI, err)
			}

			opts := []editor.Option{
				editor.WithLogger(a.logger),
				editor.WithHiddenFieldPolicy(policy),
				editor.WithCURPDerivation(a.cfg.Editor.DeriveCURP),
				editor.WithCluesLookup(a.api),
				editor.WithCURPCheck(a.api),
			}
			for _, fn := range a.changeListeners(ctx) {
				opts = append(opts, editor.WithChangeListener(fn))
			}
			ctrl := editor.New(record, a.api, a.actor, opts...)

			return runEdit(ctx, cmd.OutOrStdout(), ctrl, assignments, clues, a.logger)
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value (repeatable, applied in order)")
	cmd.Flags().StringVar(&clues, "clues", "", "CLUES code used to fill the facility fields")
	return cmd
}

type assignment struct {
	field string
	value string
}

func parseAssignments(sets []string) ([]assignment, error) {
	out := make([]assignment, 0, len(sets))
	for _, s := range sets {
		field, value, ok := strings.Cut(s, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, withCode(exitUsage, fmt.Errorf("invalid --set %q, expected field=value", s))
		}
		out = append(out, assignment{field: field, value: value})
	}
	return out, nil
}

// runEdit 驱动一次完整的编辑会话：进入编辑、逐个修改、可选 CLUES 填充、保存
func runEdit(ctx context.Context, out io.Writer, ctrl *editor.Controller, assignments []assignment, clues string, logger *zap.Logger) error {
	if err := ctrl.Edit(); err != nil {
		return withCode(editorCode(err), err)
	}

	abort := func(err error) error {
		_ = ctrl.Cancel()
		return withCode(editorCode(err), err)
	}

	for _, as := range assignments {
		if err := ctrl.SetField(as.field, as.value); err != nil {
			return abort(err)
		}
	}
	if clues != "" {
		if err := ctrl.ApplyClues(ctx, clues); err != nil {
			return abort(err)
		}
	}

	saved, err := ctrl.Save(ctx)
	if err != nil {
		logger.Debug("Edit session left open after failed save", zap.String("mode", ctrl.Mode().String()))
		return withCode(editorCode(err), fmt.Errorf("%s", ctrl.Message()))
	}
	return writeJSONLine(out, saved)
}
