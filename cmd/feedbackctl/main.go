// Command feedbackctl submits customer feedback and manages it as the admin
// from a terminal.
//
//	feedbackctl submit -product P-1 -name Ann -rating 5 -text "Great"
//	feedbackctl list
//	feedbackctl edit -id <id> -rating 4 -text "Updated"
//	feedbackctl delete -id <id> [-yes]
//
// Admin commands log in with FEEDBACK_ADMIN_USER and FEEDBACK_ADMIN_PASSWORD
// unless -user and -password are given.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"feedbackhub-backend/internal/client"
	"feedbackhub-backend/internal/models"

	"go.uber.org/zap"
)

type globals struct {
	server   string
	user     string
	password string
	verbose  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: feedbackctl <submit|list|edit|delete> [flags]")
	}
	cmd, args := args[0], args[1:]

	g := globals{}
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&g.server, "server", envOr("FEEDBACK_API_URL", "http://localhost:8080/api"), "API base URL")
	fs.StringVar(&g.user, "user", os.Getenv("FEEDBACK_ADMIN_USER"), "admin username")
	fs.StringVar(&g.password, "password", os.Getenv("FEEDBACK_ADMIN_PASSWORD"), "admin password")
	fs.BoolVar(&g.verbose, "v", false, "debug logging")

	switch cmd {
	case "submit":
		var draft models.FeedbackDraft
		fs.StringVar(&draft.ProductID, "product", "", "product ID")
		fs.StringVar(&draft.CustomerName, "name", "", "customer name")
		fs.IntVar(&draft.Rating, "rating", 0, "rating 1-5")
		fs.StringVar(&draft.ReviewText, "text", "", "review text")
		if err := fs.Parse(args); err != nil {
			return err
		}
		c := newController(g, promptConfirm(in, out))
		feedback, err := c.Submit(ctx, draft)
		fmt.Fprintln(out, c.Snapshot().Message)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "id: %s\n", feedback.ID)
		return nil

	case "list":
		if err := fs.Parse(args); err != nil {
			return err
		}
		c := newController(g, promptConfirm(in, out))
		if err := c.Login(ctx, g.user, g.password); err != nil {
			return err
		}
		printDashboard(out, c.Snapshot())
		return nil

	case "edit":
		var (
			id     string
			rating int
			text   string
		)
		fs.StringVar(&id, "id", "", "feedback ID")
		fs.IntVar(&rating, "rating", 0, "new rating 1-5 (0 keeps the current one)")
		fs.StringVar(&text, "text", "", "new review text (empty keeps the current one)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		c := newController(g, promptConfirm(in, out))
		if err := c.Login(ctx, g.user, g.password); err != nil {
			return err
		}
		if err := c.StartEdit(id); err != nil {
			return err
		}
		if rating != 0 {
			if err := c.SetDraftRating(rating); err != nil {
				return err
			}
		}
		if text != "" {
			if err := c.SetDraftText(text); err != nil {
				return err
			}
		}
		if err := c.SaveEdit(ctx); err != nil {
			return err
		}
		fmt.Fprintf(out, "Feedback %s updated\n", id)
		printDashboard(out, c.Snapshot())
		return nil

	case "delete":
		var (
			id  string
			yes bool
		)
		fs.StringVar(&id, "id", "", "feedback ID")
		fs.BoolVar(&yes, "yes", false, "skip the confirmation prompt")
		if err := fs.Parse(args); err != nil {
			return err
		}
		confirm := promptConfirm(in, out)
		if yes {
			confirm = func(string) bool { return true }
		}
		c := newController(g, confirm)
		if err := c.Login(ctx, g.user, g.password); err != nil {
			return err
		}
		if err := c.Delete(ctx, id); err != nil {
			if errors.Is(err, client.ErrNotConfirmed) {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
			return err
		}
		fmt.Fprintf(out, "Feedback %s deleted\n", id)
		printDashboard(out, c.Snapshot())
		return nil
	}

	return fmt.Errorf("unknown command %q", cmd)
}

func newController(g globals, confirm client.ConfirmFunc) *client.Controller {
	return client.NewController(client.NewHTTPClient(g.server, nil), confirm, newLogger(g.verbose))
}

func newLogger(verbose bool) *zap.SugaredLogger {
	if !verbose {
		return zap.NewNop().Sugar()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

// promptConfirm asks on out and reads a y/yes answer from in.
func promptConfirm(in io.Reader, out io.Writer) client.ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}
}

func printDashboard(out io.Writer, snap client.Snapshot) {
	fmt.Fprintf(out, "Total: %d  Average rating: %.1f\n", snap.Stats.Total, snap.Stats.AverageRating)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT\tCUSTOMER\tRATING\tCREATED\tREVIEW")
	for _, f := range snap.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			f.ID, f.ProductID, f.CustomerName, f.Rating, f.CreatedAt.Local().Format("2006-01-02 15:04"), f.ReviewText)
	}
	tw.Flush()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
