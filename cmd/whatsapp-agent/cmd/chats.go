package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var chatsGroupsOnly bool

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "List chats known to the gateway",
	Long:  "List the chats the session can see, with the IDs to use when wiring up a group or contact.",
	RunE:  runChats,
}

var chatsJoinCmd = &cobra.Command{
	Use:   "join <invite-code>",
	Short: "Join a group by invite code",
	Long:  "Join a WhatsApp group using an invite code or invite link.",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatsJoin,
}

func init() {
	chatsCmd.Flags().BoolVar(&chatsGroupsOnly, "groups", false, "list groups only")
	chatsCmd.AddCommand(chatsJoinCmd)
}

func runChats(cmd *cobra.Command, args []string) error {
	_, client, err := loadGateway()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if chatsGroupsOnly {
		groups, err := client.Groups(ctx)
		if err != nil {
			return fmt.Errorf("failed to list groups: %w", err)
		}
		if len(groups) == 0 {
			fmt.Println("No groups found.")
			return nil
		}
		for _, g := range groups {
			fmt.Printf("%-40s %s (%d participants)\n", g.Name, g.ID, g.Participants)
		}
		return nil
	}

	chats, err := client.Chats(ctx)
	if err != nil {
		return fmt.Errorf("failed to list chats: %w", err)
	}
	if len(chats) == 0 {
		fmt.Println("No chats found.")
		return nil
	}
	for _, c := range chats {
		kind := "chat"
		if c.IsGroup {
			kind = "group"
		}
		fmt.Printf("%-40s %s [%s]\n", c.Name, c.ID, kind)
	}
	return nil
}

func runChatsJoin(cmd *cobra.Command, args []string) error {
	_, client, err := loadGateway()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	groupID, err := client.JoinGroup(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to join group: %w", err)
	}

	if groupID != "" {
		fmt.Printf("Joined group %s\n", groupID)
	} else {
		fmt.Println("Join requested.")
	}
	return nil
}
