// ABOUTME: CLI commands for post operations against the configured backend.
// ABOUTME: Provides list, get, and add subcommands sharing the TUI's service layer.
package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389-research/postadmin/internal/admin"
	"github.com/2389-research/postadmin/internal/gateway"
	"github.com/2389-research/postadmin/internal/models"
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Manage posts",
	Long:  "List, look up, and create posts on the configured backend.",
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts",
	Long:  "List every post, optionally narrowed by id, title or body text.",
	RunE:  runPostsList,
}

var postsGetCmd = &cobra.Command{
	Use:   "get <id-or-title>",
	Short: "Show a post",
	Long:  "Fetch a single post by numeric id or by title (matched as a slug).",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostsGet,
}

var postsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a post",
	Long:  "Create a post. Title and body need at least 2 characters.",
	RunE:  runPostsAdd,
}

// Flags
var (
	postsFilter  string
	postsLenient bool
	postTitle    string
	postBody     string
	postUserID   int
)

func init() {
	rootCmd.AddCommand(postsCmd)
	postsCmd.AddCommand(postsListCmd)
	postsCmd.AddCommand(postsGetCmd)
	postsCmd.AddCommand(postsAddCmd)

	postsListCmd.Flags().StringVar(&postsFilter, "filter", "", "Only show posts matching this id or text")
	postsListCmd.Flags().BoolVar(&postsLenient, "lenient", false, "Treat a failed fetch as an empty list")

	postsGetCmd.Flags().BoolVar(&postsLenient, "lenient", false, "Print nothing instead of failing when the lookup fails")

	postsAddCmd.Flags().StringVar(&postTitle, "title", "", "Post title")
	postsAddCmd.Flags().StringVar(&postBody, "body", "", "Post body")
	postsAddCmd.Flags().IntVar(&postUserID, "user-id", models.DefaultUserID, "Owner user id")
}

// lenientGateway turns list failures into an empty list.
type lenientGateway struct {
	*gateway.Client
}

func (g lenientGateway) List(ctx context.Context) ([]models.Post, error) {
	return g.Client.ListOrEmpty(ctx), nil
}

func runPostsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var gw admin.Gateway = globalClient
	if postsLenient {
		gw = lenientGateway{globalClient}
	}

	svc, err := newService(gw)
	if err != nil {
		return err
	}
	if err := svc.LoadAll(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(postsFilter) != "" {
		svc.ApplyFilter(postsFilter)
	}

	posts := svc.Store().State().Items
	if len(posts) == 0 {
		fmt.Println("No posts found.")
		return nil
	}
	for _, p := range posts {
		fmt.Printf("%5d  %-32s  %s\n", p.ID, clip(p.Title, 32), clip(p.Body, 60))
	}
	fmt.Printf("\n%d posts\n", len(posts))
	return nil
}

func runPostsGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	key := models.NormalizeKey(args[0])

	if postsLenient {
		if post := globalClient.GetOrNil(ctx, key); post != nil {
			printPost(*post)
		}
		return nil
	}

	post, err := globalClient.Get(ctx, key)
	if errors.Is(err, gateway.ErrNotFound) {
		return fmt.Errorf("post %q not found", key)
	}
	if err != nil {
		return err
	}
	printPost(*post)
	return nil
}

func runPostsAdd(cmd *cobra.Command, args []string) error {
	svc, err := newService(globalClient)
	if err != nil {
		return err
	}

	draft := models.NewDraft(postTitle, postBody)
	draft.UserID = postUserID

	post, err := svc.CreatePost(cmd.Context(), draft)
	if err != nil {
		return err
	}
	fmt.Printf("Post created (ID: %d)\n", post.ID)
	return nil
}

func printPost(p models.Post) {
	fmt.Printf("#%d %s\n", p.ID, p.Title)
	fmt.Printf("user: %d  key: %s\n\n", p.UserID, p.Key())
	fmt.Println(p.Body)
}

func clip(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
