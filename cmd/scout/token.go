package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"carscout/internal/secrets"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the Telegram bot token in the OS keyring",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store the bot token (reads stdin when no argument is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		var token string
		if len(args) == 1 {
			token = args[0]
		} else {
			fmt.Fprint(os.Stderr, "Bot token: ")
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			token = strings.TrimSpace(line)
		}
		if token == "" {
			return errors.New("no token provided")
		}
		if err := secrets.SetBotToken(token); err != nil {
			return err
		}
		fmt.Println("token stored in keyring")
		return nil
	},
}

var tokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the bot token from the keyring",
	RunE: func(_ *cobra.Command, _ []string) error {
		return secrets.DeleteBotToken()
	},
}

func init() {
	tokenCmd.AddCommand(tokenSetCmd, tokenClearCmd)
	rootCmd.AddCommand(tokenCmd)
}
