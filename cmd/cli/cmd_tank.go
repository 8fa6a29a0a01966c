package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/models"
	"github.com/spf13/cobra"
)

var tankCmd = &cobra.Command{
	Use:   "tank",
	Short: "Manage tanks",
	Long:  `List tanks, register them and switch them on or off the entry form.`,
}

var tankListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tanks",
	RunE:  runTankList,
}

var tankActivateCmd = &cobra.Command{
	Use:   "activate NAME...",
	Short: "Register tanks and mark them active",
	Long:  `Register each named tank if needed and set its active flag. Use --inactive to switch tanks off.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTankActivate,
}

var tankRenameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Rename a tank",
	Args:  cobra.ExactArgs(2),
	RunE:  runTankRename,
}

var fishTypeCmd = &cobra.Command{
	Use:   "fishtype",
	Short: "Manage fish types",
}

var fishTypeAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a fish type",
	Args:  cobra.ExactArgs(1),
	RunE:  runFishTypeAdd,
}

var fishTypeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all fish types",
	RunE:  runFishTypeList,
}

func init() {
	rootCmd.AddCommand(tankCmd)
	tankCmd.AddCommand(tankListCmd)
	tankCmd.AddCommand(tankActivateCmd)
	tankCmd.AddCommand(tankRenameCmd)
	tankActivateCmd.Flags().Bool("inactive", false, "mark the tanks inactive instead")

	rootCmd.AddCommand(fishTypeCmd)
	fishTypeCmd.AddCommand(fishTypeAddCmd)
	fishTypeCmd.AddCommand(fishTypeListCmd)
}

func runTankList(cmd *cobra.Command, args []string) error {
	dbManager, err := requireSchema(cmd)
	if err != nil {
		return err
	}

	tanks, err := dbManager.GetAllTanks(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println("\n" + strings.Repeat("=", 40))
	fmt.Println("Tanks")
	fmt.Println(strings.Repeat("=", 40))

	for _, tank := range tanks {
		state := "inactive"
		if tank.Active {
			state = "active"
		}
		fmt.Printf("[%d] %-20s %s\n", tank.ID, tank.Name, state)
	}

	if len(tanks) == 0 {
		fmt.Println("No tanks registered yet.")
	}

	fmt.Println(strings.Repeat("=", 40) + "\n")
	return nil
}

func runTankActivate(cmd *cobra.Command, args []string) error {
	dbManager, err := requireSchema(cmd)
	if err != nil {
		return err
	}

	inactive, _ := cmd.Flags().GetBool("inactive")

	changes := make([]models.TankActivation, 0, len(args))
	for _, name := range args {
		changes = append(changes, models.TankActivation{Name: name, Active: models.Flag(!inactive)})
	}

	result := dbManager.ActivateTanks(cmd.Context(), changes)
	if err := result.Err(); err != nil {
		return err
	}

	fmt.Printf("✓ %s\n", result.Message)
	return nil
}

func runTankRename(cmd *cobra.Command, args []string) error {
	dbManager, err := requireSchema(cmd)
	if err != nil {
		return err
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid tank id: %s", args[0])
	}

	tank, err := dbManager.GetTankByID(cmd.Context(), id)
	if err != nil {
		return err
	}

	oldName := tank.Name
	tank.Name = args[1]

	if err := dbManager.UpdateTank(cmd.Context(), *tank).Err(); err != nil {
		return err
	}

	fmt.Printf("✓ Tank '%s' renamed to '%s'\n", oldName, strings.TrimSpace(args[1]))
	return nil
}

func runFishTypeAdd(cmd *cobra.Command, args []string) error {
	dbManager, err := requireSchema(cmd)
	if err != nil {
		return err
	}

	result := dbManager.CreateFishType(cmd.Context(), args[0])
	if err := result.Err(); err != nil {
		return err
	}

	fmt.Printf("✓ %s (id %d)\n", result.Message, result.ID)
	return nil
}

func runFishTypeList(cmd *cobra.Command, args []string) error {
	dbManager, err := requireSchema(cmd)
	if err != nil {
		return err
	}

	fishTypes, err := dbManager.GetFishTypes(cmd.Context())
	if err != nil {
		return err
	}

	for _, ft := range fishTypes {
		fmt.Printf("[%d] %s\n", ft.ID, ft.Name)
	}
	if len(fishTypes) == 0 {
		fmt.Println("No fish types registered yet.")
	}
	return nil
}
