package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"doctor-registry/internal/trash"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a doctor profile (administrators can restore it later)",
		Long:  "Asks for confirmation on stdin unless --yes is given.",
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

			svc := trash.NewService(a.api, a.actor, a.logger, a.changeFuncs(ctx)...)
			in := bufio.NewReader(cmd.InOrStdin())
			return runDelete(ctx, cmd.ErrOrStderr(), in, cmd.OutOrStdout(), svc, id, yes)
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	return cmd
}

// runDelete 确认后删除；未确认时返回 exitValidation
func runDelete(ctx context.Context, prompt io.Writer, in *bufio.Reader, out io.Writer, svc *trash.Service, id int64, yes bool) error {
	if !yes {
		fmt.Fprintf(prompt, "Delete doctor %d? [y/N]: ", id)
		line, err := readLine(in)
		if err != nil {
			return withCode(exitIO, err)
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes", "s", "si", "sí":
		default:
			return withCode(exitValidation, fmt.Errorf("delete of doctor %d cancelled", id))
		}
	}

	if err := svc.Delete(ctx, id); err != nil {
		return withCode(editorCode(err), err)
	}
	return writeJSONLine(out, map[string]any{"deleted": id})
}

func newDeletedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deleted",
		Short: "Deleted doctor profiles: list and restore (admin)",
	}
	cmd.AddCommand(newDeletedListCmd())
	cmd.AddCommand(newDeletedRestoreCmd())
	return cmd
}

func newDeletedListCmd() *cobra.Command {
	var skip, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deleted doctors, one JSON object per line",
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

			page, err := a.api.ListDeletedDoctors(ctx, skip, limit)
			if err != nil {
				return withCode(exitAPI, err)
			}
			out := cmd.OutOrStdout()
			for i := range page.Doctores {
				d := &page.Doctores[i]
				if err := writeJSONLine(out, map[string]any{
					"id":              d.ID,
					"nombre_completo": d.NombreCompleto,
					"curp":            d.CURP,
					"deleted_at":      d.DeletedAt,
					"deleted_by":      d.DeletedByName(),
				}); err != nil {
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

func newDeletedRestoreCmd() *cobra.Command {
	var ids []int64

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore deleted doctors; failures do not stop the remaining ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(ids) == 0 {
				return withCode(exitUsage, fmt.Errorf("--ids is required"))
			}
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			svc := trash.NewService(a.api, a.actor, a.logger, a.changeFuncs(ctx)...)
			return runRestore(ctx, cmd.OutOrStdout(), svc, ids)
		},
	}

	cmd.Flags().Int64SliceVar(&ids, "ids", nil, "Doctor ids, comma separated")
	return cmd
}

// runRestore 输出恢复结果；有失败时以 exitAPI 结束
func runRestore(ctx context.Context, out io.Writer, svc *trash.Service, ids []int64) error {
	res, err := svc.Restore(ctx, ids)
	if err != nil {
		return withCode(editorCode(err), err)
	}
	if err := writeJSONLine(out, map[string]any{
		"restored": res.Restored,
		"failed":   res.Failed,
		"message":  res.Message(),
	}); err != nil {
		return err
	}
	if len(res.Failed) > 0 {
		return withCode(exitAPI, fmt.Errorf("%d of %d doctor(s) could not be restored", len(res.Failed), len(res.Failed)+len(res.Restored)))
	}
	return nil
}
