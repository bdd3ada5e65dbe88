package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "List, add, or delete comments",
}

var commentListCmd = &cobra.Command{
	Use:   "list <post-id>",
	Short: "List the comments on a post",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommentList,
}

var commentAddCmd = &cobra.Command{
	Use:   "add <post-id> <content>...",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCommentAdd,
}

var commentDeleteCmd = &cobra.Command{
	Use:   "delete <comment-id>",
	Short: "Delete a comment",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommentDelete,
}

func init() {
	commentCmd.AddCommand(commentListCmd)
	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentDeleteCmd)
	rootCmd.AddCommand(commentCmd)
}

func runCommentList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	postID, err := parseID(args[0], "post")
	if err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	comments, err := a.client.Comments(ctx, postID)
	if err != nil {
		return err
	}

	if len(comments) == 0 {
		fmt.Println("No comments.")
		return nil
	}
	for _, c := range comments {
		author := "unknown"
		if c.User != nil {
			author = c.User.Username
		}
		fmt.Printf("[%d] %s (%s): %s\n", c.ID, author, c.CreatedAt.Format("2006-01-02"), c.Content)
	}
	return nil
}

func runCommentAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	postID, err := parseID(args[0], "post")
	if err != nil {
		return err
	}
	content := strings.TrimSpace(strings.Join(args[1:], " "))

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if err := a.requireAuth(); err != nil {
		return err
	}

	comment, err := a.client.CreateComment(ctx, postID, content)
	if err != nil {
		return err
	}

	fmt.Printf("Comment #%d added to post #%d\n", comment.ID, postID)
	return nil
}

func runCommentDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	commentID, err := parseID(args[0], "comment")
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

	if err := a.client.DeleteComment(ctx, commentID); err != nil {
		return err
	}

	fmt.Printf("Deleted comment #%d\n", commentID)
	return nil
}
