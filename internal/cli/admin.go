package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/en9inerd/tagbot/internal/store"
)

func init() {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage bot admins offline",
	}
	adminCmd.PersistentFlags().Int64P("chat", "c", store.GlobalChat, "Marked chat ID (0 for a global admin)")

	addCmd := &cobra.Command{
		Use:   "add <user-id>",
		Short: "Grant admin rights",
		Args:  cobra.ExactArgs(1),
		Run:   runAdminAdd,
	}
	removeCmd := &cobra.Command{
		Use:   "remove <user-id>",
		Short: "Revoke admin rights",
		Args:  cobra.ExactArgs(1),
		Run:   runAdminRemove,
	}
	ownerCmd := &cobra.Command{
		Use:   "owner <user-id>",
		Short: "Make a user the owner, replacing the current one",
		Args:  cobra.ExactArgs(1),
		Run:   runAdminOwner,
	}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the owner and admins of a chat",
		Run:   runAdminList,
	}

	adminCmd.AddCommand(addCmd, removeCmd, ownerCmd, listCmd)
	RootCmd.AddCommand(adminCmd)
}

func parseUserID(arg string) int64 {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		exitErr("user id", fmt.Errorf("invalid user id %q", arg))
	}
	return id
}

func runAdminAdd(cmd *cobra.Command, args []string) {
	userID := parseUserID(args[0])
	chatID, _ := cmd.Flags().GetInt64("chat")

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	added, err := s.AddAdmin(cmd.Context(), chatID, userID)
	if err != nil {
		exitErr("add admin", err)
	}
	if !added {
		fmt.Printf("%d is already an admin in %d\n", userID, chatID)
		return
	}
	fmt.Printf("added admin %d in %d\n", userID, chatID)
}

func runAdminRemove(cmd *cobra.Command, args []string) {
	userID := parseUserID(args[0])
	chatID, _ := cmd.Flags().GetInt64("chat")

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	removed, err := s.RemoveAdmin(cmd.Context(), chatID, userID)
	if err != nil {
		exitErr("remove admin", err)
	}
	if !removed {
		fmt.Printf("%d is not an admin in %d\n", userID, chatID)
		return
	}
	fmt.Printf("removed admin %d in %d\n", userID, chatID)
}

func runAdminOwner(cmd *cobra.Command, args []string) {
	userID := parseUserID(args[0])

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.SetOwner(cmd.Context(), userID); err != nil {
		exitErr("set owner", err)
	}
	fmt.Printf("owner is now %d\n", userID)
}

type adminEntry struct {
	ChatID   int64  `json:"chat_id"`
	UserID   int64  `json:"user_id"`
	Role     string `json:"role"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	AddedAt  string `json:"added_at"`
}

func runAdminList(cmd *cobra.Command, args []string) {
	chatID, _ := cmd.Flags().GetInt64("chat")

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	admins, err := s.Admins(cmd.Context(), chatID)
	if err != nil {
		exitErr("list admins", err)
	}

	entries := make([]adminEntry, 0, len(admins))
	for _, a := range admins {
		entries = append(entries, adminEntry{
			ChatID:   a.ChatID,
			UserID:   a.UserID,
			Role:     string(a.Role),
			Username: a.User.Username,
			Name:     a.User.FirstName,
			AddedAt:  a.AddedAt.Format("2006-01-02 15:04:05"),
		})
	}

	b, _ := json.MarshalIndent(entries, "", "  ")
	fmt.Println(string(b))
}
