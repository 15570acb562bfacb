// Command lawctl manages the legal corpus and asks questions against a
// running server.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ailawyer/internal/apiclient"
	"ailawyer/internal/pkg/jwtutil"
	"ailawyer/internal/pkg/textextract"
	"ailawyer/internal/stream"
)

type globals struct {
	server    string
	adminUser string
	adminPass string
	token     string
	jwtSecret string
	userID    uint
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	g := &globals{}
	cmd := &cobra.Command{
		Use:           "lawctl",
		Short:         "Manage the legal corpus and query the assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&g.server, "server", envOr("LAWCTL_SERVER", "http://127.0.0.1:8080"), "server base URL")
	cmd.PersistentFlags().StringVar(&g.adminUser, "admin-user", envOr("ADMIN_USERNAME", "admin"), "admin username")
	cmd.PersistentFlags().StringVar(&g.adminPass, "admin-password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	cmd.PersistentFlags().StringVar(&g.token, "token", os.Getenv("LAWCTL_TOKEN"), "bearer token for user endpoints")
	cmd.PersistentFlags().StringVar(&g.jwtSecret, "jwt-secret", os.Getenv("JWT_SECRET"), "sign a short-lived token locally when --token is empty")
	cmd.PersistentFlags().UintVar(&g.userID, "user-id", 1, "user id for a locally signed token")

	cmd.AddCommand(indexCmd(g), statsCmd(g), removeCmd(g), askCmd(g))
	return cmd
}

func (g *globals) adminClient() *apiclient.Client {
	return apiclient.New(g.server, apiclient.WithAdmin(g.adminUser, g.adminPass))
}

func (g *globals) userClient() (*apiclient.Client, error) {
	token := g.token
	if token == "" {
		if g.jwtSecret == "" {
			return nil, fmt.Errorf("either --token or --jwt-secret is required")
		}
		var err error
		token, err = jwtutil.GenerateToken(g.jwtSecret, 15*time.Minute, g.userID, "lawctl")
		if err != nil {
			return nil, err
		}
	}
	// Answers stream for minutes; only the request context bounds them.
	return apiclient.New(g.server, apiclient.WithToken(token), apiclient.WithHTTPClient(&http.Client{})), nil
}

func indexCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "index <dir>",
		Short: "Upload every supported document in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			entries, err := os.ReadDir(args[0])
			if err != nil {
				return err
			}
			var files []string
			for _, e := range entries {
				if !e.IsDir() && textextract.Supported(e.Name()) {
					files = append(files, filepath.Join(args[0], e.Name()))
				}
			}
			sort.Strings(files)
			if len(files) == 0 {
				return fmt.Errorf("no .pdf, .docx, .txt or .md files in %s", args[0])
			}

			client := g.adminClient()
			failed := 0
			for _, path := range files {
				doc, err := client.Upload(ctx, path)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", filepath.Base(path), err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s [%s] %s, %d chunks\n", doc.SourceName, doc.DocType, doc.Status, doc.ChunkCount)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, len(files))
			}
			return nil
		},
	}
}

func statsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show corpus statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := g.adminClient().Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "documents: %d  chunks: %d  pending: %d  failed: %d\n",
				stats.TotalDocuments, stats.TotalChunks, stats.Pending, stats.Failed)
			for _, d := range stats.Documents {
				fmt.Fprintf(out, "  %-50s %-14s %d\n", d.Source, d.DocType, d.Chunks)
			}
			return nil
		},
	}
}

func removeCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <source>",
		Short: "Delete a document and all of its chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := g.adminClient().Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s (%d chunks)\n", args[0], n)
			return nil
		},
	}
}

func askCmd(g *globals) *cobra.Command {
	var (
		mode      string
		sessionID uint
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a legal question and stream the answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client, err := g.userClient()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return client.Ask(ctx, apiclient.AskInput{Question: args[0], Mode: mode, SessionID: sessionID}, func(ev stream.Event) error {
				switch ev.Kind {
				case stream.KindChunk:
					fmt.Fprint(out, ev.Chunk)
				case stream.KindDone:
					fmt.Fprintf(out, "\n\nsession %d\n", ev.Done.SessionID)
					for _, s := range ev.Done.Sources {
						fmt.Fprintf(out, "  [%s] %s, %s (%s)\n", s.Similarity, s.Source, s.Article, s.Title)
					}
				case stream.KindError:
					return fmt.Errorf("%s (%s)", ev.Error, ev.Code)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "chat mode, see GET /api/lawyer/modes")
	cmd.Flags().UintVar(&sessionID, "session", 0, "continue an existing session")
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
