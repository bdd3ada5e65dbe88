package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivler/haivler-cli/internal/api"
)

var (
	feedPage  int
	feedLimit int
	feedSort  string
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Browse the post feed",
	Long: `Browse the post feed.

The feed is paginated and can be sorted newest-first ("new") or by
reaction count ("popular"). Works without a login; the backend decides
what anonymous users may see.`,
	RunE: runFeed,
}

func init() {
	feedCmd.Flags().IntVar(&feedPage, "page", 0, "page number (zero-based)")
	feedCmd.Flags().IntVar(&feedLimit, "limit", 10, "posts per page")
	feedCmd.Flags().StringVar(&feedSort, "sort", "new", "sort order: new or popular")
	rootCmd.AddCommand(feedCmd)
}

func runFeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var sort api.Sort
	switch feedSort {
	case "new":
		sort = api.SortNew
	case "popular":
		sort = api.SortPopular
	default:
		return fmt.Errorf("invalid sort %q: must be new or popular", feedSort)
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	posts, err := a.client.Posts(ctx, feedPage, feedLimit, sort)
	if err != nil {
		return err
	}

	if len(posts) == 0 {
		fmt.Println("No posts.")
		return nil
	}

	for _, p := range posts {
		printPostSummary(&p)
	}
	return nil
}

func printPostSummary(p *api.Post) {
	author := "unknown"
	if p.User != nil {
		author = p.User.Username
	}
	fmt.Printf("#%d  %s\n", p.ID, p.Title)
	fmt.Printf("    by %s on %s  |  +%d -%d\n", author, p.CreatedAt.Format("2006-01-02"), p.LikeCount, p.DislikeCount)
	if p.Description != "" {
		fmt.Printf("    %s\n", p.Description)
	}
	fmt.Printf("    %s\n", p.ImageURL)
}
