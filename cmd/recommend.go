package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nearbite/nearbite/internal/model"
)

var recommendFlags struct {
	lat          float64
	lon          float64
	session      string
	variant      string
	userID       string
	telco        string
	cards        []string
	memberships  []string
	affiliations []string
	asJSON       bool
}

var recommendCmd = &cobra.Command{
	Use:   "recommend [query]",
	Short: "Run one recommendation from the command line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		req := model.RecommendRequest{
			UserQuery: strings.Join(args, " "),
			SessionID: recommendFlags.session,
			Variant:   model.Variant(recommendFlags.variant),
		}
		if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon") {
			req.Latitude = &recommendFlags.lat
			req.Longitude = &recommendFlags.lon
		}
		if recommendFlags.telco != "" {
			req.UserProfile = &model.UserProfile{
				UserID:       recommendFlags.userID,
				Telco:        recommendFlags.telco,
				Cards:        recommendFlags.cards,
				Memberships:  recommendFlags.memberships,
				Affiliations: recommendFlags.affiliations,
			}
		}

		resp := env.Pipeline.Run(ctx, req)

		if recommendFlags.asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}

		if !resp.Success {
			fmt.Fprintf(os.Stderr, "rejected: %s\n", resp.Message)
			return nil
		}
		fmt.Println(resp.Answer)
		if len(resp.Diagnostics.Degraded) > 0 {
			fmt.Fprintf(os.Stderr, "(degraded: %s)\n", strings.Join(resp.Diagnostics.Degraded, ", "))
		}
		return nil
	},
}

func init() {
	f := recommendCmd.Flags()
	f.Float64Var(&recommendFlags.lat, "lat", 0, "user latitude")
	f.Float64Var(&recommendFlags.lon, "lon", 0, "user longitude")
	f.StringVar(&recommendFlags.session, "session", "", "session id for retrieval isolation")
	f.StringVar(&recommendFlags.variant, "variant", "", "retrieval variant (baseline, no_rerank, no_context)")
	f.StringVar(&recommendFlags.userID, "user", "cli", "user id for the profile")
	f.StringVar(&recommendFlags.telco, "telco", "", "carrier (SKT, KT, LG U+)")
	f.StringSliceVar(&recommendFlags.cards, "cards", nil, "payment cards held by the user")
	f.StringSliceVar(&recommendFlags.memberships, "memberships", nil, "memberships held by the user")
	f.StringSliceVar(&recommendFlags.affiliations, "affiliations", nil, "organization affiliations")
	f.BoolVar(&recommendFlags.asJSON, "json", false, "print the full response as JSON")
	rootCmd.AddCommand(recommendCmd)
}
