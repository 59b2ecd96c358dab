package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bertrandmartel/yummy/sp/session"
)

func encodeCmd(o *options) *cobra.Command {
	var setCookie bool
	cmd := &cobra.Command{
		Use:   "encode <json>",
		Short: "Encrypt a JSON session into a cookie value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := session.New()
			if err := json.Unmarshal([]byte(args[0]), s); err != nil {
				return fmt.Errorf("session json: %w", err)
			}
			h := session.NewHandle(s, o.sessions.DefaultCookie())
			c := o.sessions.Codec()
			val, err := c.Encode(h.Session())
			if err != nil {
				return err
			}
			if setCookie {
				fmt.Fprintln(cmd.OutOrStdout(), h.CookieOptions().ToCookie(c.Name(), val).String())
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), val)
			return nil
		},
	}
	cmd.Flags().BoolVar(&setCookie, "set-cookie", false, "print a full Set-Cookie header value")
	return cmd
}
