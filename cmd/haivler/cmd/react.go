package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivler/haivler-cli/internal/api"
)

var reactCmd = &cobra.Command{
	Use:   "react",
	Short: "Like, dislike, or unreact to a post",
	Long: `Like, dislike, or unreact to a post.

Reacting with the opposite type replaces your existing reaction; the
backend handles the swap. Two rapid reactions race at the network level
and whichever response lands last wins.`,
}

var reactLikeCmd = &cobra.Command{
	Use:   "like <post-id>",
	Short: "Like a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReact(cmd, args[0], api.ReactionLike)
	},
}

var reactDislikeCmd = &cobra.Command{
	Use:   "dislike <post-id>",
	Short: "Dislike a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReact(cmd, args[0], api.ReactionDislike)
	},
}

var reactRemoveCmd = &cobra.Command{
	Use:   "remove <post-id>",
	Short: "Remove your reaction from a post",
	Args:  cobra.ExactArgs(1),
	RunE:  runReactRemove,
}

var reactShowCmd = &cobra.Command{
	Use:   "show <post-id>",
	Short: "Show a post's reaction counts",
	Args:  cobra.ExactArgs(1),
	RunE:  runReactShow,
}

func init() {
	reactCmd.AddCommand(reactLikeCmd)
	reactCmd.AddCommand(reactDislikeCmd)
	reactCmd.AddCommand(reactRemoveCmd)
	reactCmd.AddCommand(reactShowCmd)
	rootCmd.AddCommand(reactCmd)
}

func runReact(cmd *cobra.Command, arg string, rt api.ReactionType) error {
	ctx := cmd.Context()
	postID, err := parseID(arg, "post")
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

	if err := a.client.CreateReaction(ctx, postID, rt); err != nil {
		return err
	}

	switch rt {
	case api.ReactionLike:
		fmt.Printf("Liked post #%d\n", postID)
	case api.ReactionDislike:
		fmt.Printf("Disliked post #%d\n", postID)
	}
	return nil
}

func runReactRemove(cmd *cobra.Command, args []string) error {
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

	if err := a.requireAuth(); err != nil {
		return err
	}

	if err := a.client.DeleteReaction(ctx, postID); err != nil {
		return err
	}

	fmt.Printf("Removed reaction from post #%d\n", postID)
	return nil
}

func runReactShow(cmd *cobra.Command, args []string) error {
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

	summary, err := a.client.Reactions(ctx, postID)
	if err != nil {
		return err
	}

	fmt.Printf("Post #%d: +%d -%d\n", postID, summary.LikeCount, summary.DislikeCount)
	if summary.UserReaction != "" {
		fmt.Printf("Your reaction: %s\n", summary.UserReaction)
	}
	return nil
}
