package main

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planweave/planweave/internal/config"
)

// --- create ---

var createCmd = &cobra.Command{
	Use:   "create <goal>",
	Short: "Create a plan for a goal",
	Long: `Create a plan for a goal.

The goal is decomposed into steps, each step is enriched with web research
and, when a location is detected, a weather forecast.

Examples:
  planweave create "Plan a 3-day trip to Jaipur"
  planweave create "Learn Python in 30 days"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		goal := strings.Join(args, " ")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		printStep("Generating plan...")
		resp, err := client.post(cmd.Context(), "/plans", map[string]any{"goal": goal})
		if err != nil {
			return err
		}

		var created struct {
			ID       int64 `json:"id"`
			PlanData struct {
				TotalSteps             int    `json:"total_steps"`
				EstimatedTotalDuration string `json:"estimated_total_duration"`
				Steps                  []struct {
					StepNumber        int    `json:"step_number"`
					Title             string `json:"title"`
					EstimatedDuration string `json:"estimated_duration"`
					DetectedLocation  string `json:"detected_location"`
				} `json:"steps"`
			} `json:"plan_data"`
		}
		if err := decodeJSON(resp, &created); err != nil {
			return err
		}

		printSuccess("Created plan %d (%d steps, %s)",
			created.ID, created.PlanData.TotalSteps, created.PlanData.EstimatedTotalDuration)
		for _, s := range created.PlanData.Steps {
			line := fmt.Sprintf("%s (%s)", s.Title, s.EstimatedDuration)
			if s.DetectedLocation != "" {
				line += fmt.Sprintf(" [%s]", s.DetectedLocation)
			}
			fmt.Printf("  %s %s\n", colorize(colorCyan, fmt.Sprintf("%d.", s.StepNumber)), line)
		}
		return nil
	},
}

// --- list ---

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		search, _ := cmd.Flags().GetString("search")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := fmt.Sprintf("/plans?limit=%d&offset=%d", limit, offset)
		if search != "" {
			path += "&search=" + url.QueryEscape(search)
		}
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		var page struct {
			Plans []struct {
				ID        int64  `json:"id"`
				Goal      string `json:"goal"`
				NumSteps  int    `json:"num_steps"`
				CreatedAt string `json:"created_at"`
			} `json:"plans"`
		}
		if err := decodeJSON(resp, &page); err != nil {
			return err
		}

		if len(page.Plans) == 0 {
			fmt.Println("No plans found.")
			return nil
		}

		for _, p := range page.Plans {
			goal := p.Goal
			if len(goal) > 80 {
				goal = goal[:80] + "..."
			}
			fmt.Printf("%s  %s  %2d steps  %s\n",
				colorize(colorCyan, fmt.Sprintf("%4d", p.ID)),
				p.CreatedAt,
				p.NumSteps,
				goal,
			)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().Int("limit", 20, "maximum number of plans to list")
	listCmd.Flags().Int("offset", 0, "number of plans to skip")
	listCmd.Flags().String("search", "", "filter plans by goal substring")
}

// --- show ---

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single plan as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/plans/"+args[0])
		if err != nil {
			return err
		}

		var plan any
		if err := decodeJSON(resp, &plan); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	},
}

// --- update ---

var updateCmd = &cobra.Command{
	Use:   "update <id> <goal>",
	Short: "Update a plan's goal",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		goal := strings.Join(args[1:], " ")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.put(cmd.Context(), "/plans/"+id, map[string]any{"goal": goal})
		if err != nil {
			return err
		}

		var updated struct {
			ID   int64  `json:"id"`
			Goal string `json:"goal"`
		}
		if err := decodeJSON(resp, &updated); err != nil {
			return err
		}

		printSuccess("Updated plan %d: %s", updated.ID, updated.Goal)
		return nil
	},
}

// --- delete ---

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/plans/"+args[0])
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Deleted plan %s", args[0])
		return nil
	},
}

// --- export ---

var exportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Export plans to json, csv, or markdown",
	Long: `Export plans to json, csv, or markdown.

With an id, exports a single plan; without one, exports all stored plans.
The file name defaults to the one suggested by the server.

Examples:
  planweave export --format markdown
  planweave export 3 --format csv --output plan.csv
  planweave export 3 --output -`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := "/plans/export/" + format
		if len(args) == 1 {
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("invalid plan id %q", args[0])
			}
			path = "/plans/" + args[0] + "/export/" + format
		}

		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		disposition := resp.Header.Get("Content-Disposition")
		body, err := readBody(resp)
		if err != nil {
			return err
		}

		if output == "-" {
			_, err := os.Stdout.Write(body)
			return err
		}

		if output == "" {
			output = filenameFromDisposition(disposition)
		}
		if output == "" {
			output = "plans-export." + format
		}

		if err := os.WriteFile(output, body, 0o644); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
		printSuccess("Exported to %s", output)
		return nil
	},
}

func filenameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

func init() {
	exportCmd.Flags().String("format", "json", "export format: json, csv, or markdown")
	exportCmd.Flags().String("output", "", "output file path (default: server-suggested name, '-' for stdout)")
}

// --- stats ---

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show plan storage statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/stats")
		if err != nil {
			return err
		}

		var stats struct {
			TotalPlans   int     `json:"total_plans"`
			AvgSteps     float64 `json:"avg_steps"`
			NewestPlanAt string  `json:"newest_plan_at"`
		}
		if err := decodeJSON(resp, &stats); err != nil {
			return err
		}

		printStatus("Total plans", "%d", stats.TotalPlans)
		printStatus("Average steps", "%.1f", stats.AvgSteps)
		if stats.NewestPlanAt != "" {
			printStatus("Newest plan", "%s", stats.NewestPlanAt)
		}
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
