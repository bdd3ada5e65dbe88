package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/haivler/haivler-cli/internal/api"
)

var (
	postTitle       string
	postDescription string
	postImagePath   string
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Show, create, edit, or delete posts",
}

var postShowCmd = &cobra.Command{
	Use:   "show <post-id>",
	Short: "Show a post with its comments and reactions",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostShow,
}

var postCreateCmd = &cobra.Command{
	Use:   "create --title <title> --image <path>",
	Short: "Upload a new post",
	Long: `Upload a new post.

Title and image are required and checked locally; a rejected post never
reaches the network. The image is uploaded as multipart form data.`,
	RunE: runPostCreate,
}

var postEditCmd = &cobra.Command{
	Use:   "edit <post-id>",
	Short: "Edit a post's title or description",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostEdit,
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete <post-id>",
	Short: "Delete a post",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostDelete,
}

func init() {
	postCreateCmd.Flags().StringVar(&postTitle, "title", "", "post title (required)")
	postCreateCmd.Flags().StringVar(&postDescription, "description", "", "optional caption")
	postCreateCmd.Flags().StringVar(&postImagePath, "image", "", "path to the image file (required)")

	postEditCmd.Flags().StringVar(&postTitle, "title", "", "new title")
	postEditCmd.Flags().StringVar(&postDescription, "description", "", "new description")

	postCmd.AddCommand(postShowCmd)
	postCmd.AddCommand(postCreateCmd)
	postCmd.AddCommand(postEditCmd)
	postCmd.AddCommand(postDeleteCmd)
	rootCmd.AddCommand(postCmd)
}

// parseID converts a positional id argument.
func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}

func runPostShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := parseID(args[0], "post")
	if err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	post, err := a.client.Post(ctx, id)
	if err != nil {
		return err
	}
	printPostSummary(post)

	// Comments and reactions are best-effort: a failure to load either
	// should not hide the post itself.
	if summary, err := a.client.Reactions(ctx, id); err == nil {
		fmt.Printf("\nReactions: +%d -%d\n", summary.LikeCount, summary.DislikeCount)
		if summary.UserReaction != "" {
			fmt.Printf("Your reaction: %s\n", summary.UserReaction)
		}
	} else {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	comments, err := a.client.Comments(ctx, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return nil
	}

	fmt.Printf("\nComments (%d):\n", len(comments))
	for _, c := range comments {
		author := "unknown"
		if c.User != nil {
			author = c.User.Username
		}
		fmt.Printf("  [%d] %s (%s): %s\n", c.ID, author, c.CreatedAt.Format("2006-01-02"), c.Content)
	}
	return nil
}

func runPostCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if err := a.requireAuth(); err != nil {
		return err
	}

	np := api.NewPost{
		Title:       postTitle,
		Description: postDescription,
	}
	if postImagePath != "" {
		data, err := os.ReadFile(postImagePath)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		np.Image = data
		np.ImageName = filepath.Base(postImagePath)
	}

	post, err := a.client.CreatePost(ctx, np)
	if err != nil {
		return err
	}

	fmt.Printf("Posted #%d: %s\n", post.ID, post.Title)
	return nil
}

func runPostEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := parseID(args[0], "post")
	if err != nil {
		return err
	}

	var update api.PostUpdate
	changed := false
	if cmd.Flags().Changed("title") {
		update.Title = postTitle
		changed = true
	}
	if cmd.Flags().Changed("description") {
		update.Description = postDescription
		changed = true
	}
	if !changed {
		return fmt.Errorf("nothing to update: pass --title or --description")
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if err := a.requireAuth(); err != nil {
		return err
	}

	post, err := a.client.UpdatePost(ctx, id, update)
	if err != nil {
		return err
	}

	fmt.Printf("Updated #%d: %s\n", post.ID, post.Title)
	return nil
}

func runPostDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := parseID(args[0], "post")
	if err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if err := a.requireAuth(); err != nil {
		return err
	}

	if err := a.client.DeletePost(ctx, id); err != nil {
		return err
	}

	fmt.Printf("Deleted post #%d\n", id)
	return nil
}
