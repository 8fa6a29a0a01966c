package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/models"
	"github.com/spf13/cobra"
)

var readingCmd = &cobra.Command{
	Use:   "reading",
	Short: "Inspect and remove logged readings",
}

var readingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List readings, newest first",
	RunE:  runReadingList,
}

var readingShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one reading with its tank snapshots",
	Args:  cobra.ExactArgs(1),
	RunE:  runReadingShow,
}

var readingDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a reading and its tank snapshots",
	Args:  cobra.ExactArgs(1),
	RunE:  runReadingDelete,
}

func init() {
	rootCmd.AddCommand(readingCmd)
	readingCmd.AddCommand(readingListCmd)
	readingCmd.AddCommand(readingShowCmd)
	readingCmd.AddCommand(readingDeleteCmd)

	readingListCmd.Flags().Int("page", 1, "page number")
	readingListCmd.Flags().Int("page-size", models.DefaultPageSize, "readings per page")
	readingListCmd.Flags().Int("month", 0, "month filter (1-12, needs --year)")
	readingListCmd.Flags().Int("year", 0, "year filter")
	readingDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

func runReadingList(cmd *cobra.Command, args []string) error {
	dbManager, err := requireSchema(cmd)
	if err != nil {
		return err
	}

	var q models.PageQuery
	q.Page, _ = cmd.Flags().GetInt("page")
	q.PageSize, _ = cmd.Flags().GetInt("page-size")
	q.Month, _ = cmd.Flags().GetInt("month")
	q.Year, _ = cmd.Flags().GetInt("year")

	readings, err := dbManager.GetReadingsPage(cmd.Context(), q)
	if err != nil {
		return err
	}
	totalPages, err := dbManager.GetTotalPages(cmd.Context(), q)
	if err != nil {
		return err
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Printf("Readings - page %d of %d\n", q.Page, totalPages)
	fmt.Println(strings.Repeat("=", 80))

	loc := dbManager.Location()
	for _, r := range readings {
		fmt.Printf("[%d] %s  operator: %-12s water: %s°C  tanks: %d\n",
			r.ID,
			r.RecordedAt.In(loc).Format("2006-01-02 15:04"),
			r.OperatorName,
			r.WaterTemperature,
			len(r.TankSnapshots),
		)
	}

	if len(readings) == 0 {
		fmt.Println("No readings on this page.")
	}

	fmt.Println(strings.Repeat("=", 80) + "\n")
	return nil
}

func runReadingShow(cmd *cobra.Command, args []string) error {
	dbManager, err := requireSchema(cmd)
	if err != nil {
		return err
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid reading id: %s", args[0])
	}

	r, err := dbManager.GetReadingByID(cmd.Context(), id)
	if err != nil {
		return err
	}

	fmt.Printf("\nReading %d - %s by %s\n", r.ID, r.RecordedAt.In(dbManager.Location()).Format("2006-01-02 15:04:05"), r.OperatorName)
	fmt.Printf("  Header pressure in: %s\n", r.HeaderPressureIn)
	fmt.Printf("  Pumps 1-4: %v %v %v %v\n", r.Pump1Active, r.Pump2Active, r.Pump3Active, r.Pump4Active)
	fmt.Printf("  Water temperature: %s  Battery: %sV\n", r.WaterTemperature, r.BatteryVoltage)
	fmt.Printf("  Generator: %dh %dm  Fuel: %s\n", r.GeneratorHours, r.GeneratorMinutes, r.FuelTankLevel)

	for _, s := range r.TankSnapshots {
		fmt.Printf("  - %s: %s x%d, DO %s, feed %s%s, mort %d\n",
			s.TankName, s.FishTypeName, s.FishCount, s.DOLevel, s.FeedAmount, s.FeedUnit, s.Mortality)
	}
	fmt.Println()
	return nil
}

func runReadingDelete(cmd *cobra.Command, args []string) error {
	dbManager, err := requireSchema(cmd)
	if err != nil {
		return err
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid reading id: %s", args[0])
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		fmt.Printf("⚠️  Are you sure you want to delete reading %d and its tank snapshots? (yes/no): ", id)
		confirm, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		confirm = strings.TrimSpace(strings.ToLower(confirm))
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	result := dbManager.DeleteReading(cmd.Context(), id)
	if err := result.Err(); err != nil {
		return err
	}

	fmt.Printf("✓ %s\n", result.Message)
	return nil
}
