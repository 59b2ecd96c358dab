package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/bertrandmartel/yummy/sp/codec"
)

func decodeCmd(o *options) *cobra.Command {
	var (
		header bool
		path   string
	)
	cmd := &cobra.Command{
		Use:   "decode <value>",
		Short: "Decrypt a session cookie value and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := o.sessions.Codec()
			value := args[0]
			if header {
				v, ok := codec.ParseCookieHeader(value)[c.Name()]
				if !ok {
					return fmt.Errorf("no %s cookie in header", c.Name())
				}
				value = v
			}
			s, err := c.Open(value)
			if err != nil {
				return err
			}
			out, err := json.Marshal(s)
			if err != nil {
				return err
			}
			if path != "" {
				res := gjson.GetBytes(out, path)
				if !res.Exists() {
					return fmt.Errorf("%s: no such field", path)
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.String())
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&header, "header", false, "argument is a full Cookie header")
	cmd.Flags().StringVar(&path, "get", "", "print only this field (gjson path, e.g. cookie.path)")
	return cmd
}
