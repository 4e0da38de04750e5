package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"doctor-registry/internal/auditlog"

	"github.com/spf13/cobra"
)

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit log viewer and bulk purge (admin)",
	}
	cmd.AddCommand(newAuditListCmd())
	cmd.AddCommand(newAuditPurgeCmd())
	return cmd
}

func newAuditListCmd() *cobra.Command {
	var page, pageSize int
	var start, end string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List audit log entries, one JSON object per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := auditlog.NewQuery(page, pageSize, start, end)
			if err != nil {
				return withCode(exitUsage, err)
			}
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.api.ListAuditLogs(ctx, q)
			if err != nil {
				return withCode(exitAPI, err)
			}
			out := cmd.OutOrStdout()
			for i := range result.AuditLogs {
				if err := writeJSONLine(out, &result.AuditLogs[i]); err != nil {
					return err
				}
			}
			return writeJSONLine(out, map[string]any{"total_count": result.TotalCount, "page": page})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number (from 1)")
	cmd.Flags().IntVar(&pageSize, "page-size", auditlog.DefaultPageSize, "Page size")
	cmd.Flags().StringVar(&start, "start", "", "Start date YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "End date YYYY-MM-DD")
	return cmd
}

func newAuditPurgeCmd() *cobra.Command {
	var ids []int64
	var phrase, pin string

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete audit log entries after phrase and PIN confirmation",
		Long: "Without --phrase or --pin the values are read from stdin.\n" +
			"Three wrong confirmation phrases cancel the purge.",
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

			p := auditlog.NewPurge(a.api, a.actor, a.cfg.Audit.ConfirmPhrase, a.logger)
			in := bufio.NewReader(cmd.InOrStdin())
			n, err := runPurge(ctx, cmd.ErrOrStderr(), in, p, ids, phrase, pin)
			if err != nil {
				return withCode(editorCode(err), err)
			}
			return writeJSONLine(cmd.OutOrStdout(), map[string]any{"deleted": n})
		},
	}

	cmd.Flags().Int64SliceVar(&ids, "ids", nil, "Audit log ids, comma separated")
	cmd.Flags().StringVar(&phrase, "phrase", "", "Confirmation phrase")
	cmd.Flags().StringVar(&pin, "pin", "", "Admin PIN (4-8 digits)")
	return cmd
}

// runPurge 驱动确认流程；phrase/pin 为空时从 in 读取
func runPurge(ctx context.Context, prompt io.Writer, in *bufio.Reader, p *auditlog.Purge, ids []int64, phrase, pin string) (int, error) {
	if err := p.Select(ids...); err != nil {
		return 0, err
	}
	if err := p.Begin(); err != nil {
		return 0, err
	}

	if phrase != "" {
		if err := p.ConfirmPhrase(phrase); err != nil {
			p.Cancel()
			return 0, err
		}
	} else {
		for p.State() == auditlog.StateAwaitingPhrase {
			fmt.Fprintf(prompt, "Type the confirmation phrase to delete %d entries: ", len(ids))
			line, err := readLine(in)
			if err != nil {
				p.Cancel()
				return 0, err
			}
			if err := p.ConfirmPhrase(line); err != nil {
				if errors.Is(err, auditlog.ErrCancelled) {
					return 0, err
				}
				fmt.Fprintln(prompt, err.Error())
			}
		}
	}

	if pin == "" {
		fmt.Fprint(prompt, "PIN: ")
		line, err := readLine(in)
		if err != nil {
			p.Cancel()
			return 0, err
		}
		pin = line
	}

	n, err := p.SubmitPIN(ctx, pin)
	if err != nil {
		p.Cancel()
		return 0, err
	}
	return n, nil
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
