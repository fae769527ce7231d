package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jrsteele09/go-asset-console/apiclient"
	"github.com/jrsteele09/go-asset-console/menu"
	"github.com/jrsteele09/go-asset-console/permission"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// loadEvaluator signs the stored session in and loads its permission tree.
func loadEvaluator(ctx context.Context) (*apiclient.Coordinator, *permission.Evaluator, error) {
	c, _, err := newCoordinator()
	if err != nil {
		return nil, nil, err
	}
	if err := requireSession(c); err != nil {
		return nil, nil, err
	}
	ev := permission.NewEvaluator()
	if _, err := c.Bootstrap(ctx, ev); err != nil {
		return nil, nil, fmt.Errorf("failed to load permissions: %w", err)
	}
	return c, ev, nil
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Show the navigation menu of the signed in member",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, ev, err := loadEvaluator(cmd.Context())
		if err != nil {
			return err
		}
		root := pterm.TreeNode{Text: "Asset console", Children: treeNodes(menu.Build(ev))}
		return pterm.DefaultTree.WithRoot(root).Render()
	},
}

func treeNodes(items []menu.Item) []pterm.TreeNode {
	nodes := make([]pterm.TreeNode, 0, len(items))
	for _, it := range items {
		nodes = append(nodes, pterm.TreeNode{
			Text:     fmt.Sprintf("%s %s", it.Label, pterm.Gray(it.Path)),
			Children: treeNodes(it.Children),
		})
	}
	return nodes
}

var canCmd = &cobra.Command{
	Use:   "can <resource> [action]",
	Short: "Check an action on a resource key",
	Long: `Checks whether the signed in member may perform action (READ, CREATE,
UPDATE or DELETE, default READ) on a resource key such as /assets. Exits
with status 1 when the action is denied.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		action := permission.ActionRead
		if len(args) == 2 {
			parsed, err := permission.ParseAction(args[1])
			if err != nil {
				return err
			}
			action = parsed
		}

		_, ev, err := loadEvaluator(cmd.Context())
		if err != nil {
			return err
		}
		if !ev.HasPermission(args[0], action) {
			pterm.Error.Printfln("%s %s: denied", action, args[0])
			return errDenied
		}
		pterm.Success.Printfln("%s %s: allowed", action, args[0])
		return nil
	},
}

var guardCmd = &cobra.Command{
	Use:   "guard <route>",
	Short: "Check whether a console route may be opened",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resource, ok := menu.RequiredResource(menu.ConsoleRoutes(), args[0])
		if !ok {
			return fmt.Errorf("unknown console route %s", args[0])
		}
		_, ev, err := loadEvaluator(cmd.Context())
		if err != nil {
			return err
		}
		decision := ev.Guard(resource)
		if decision != permission.DecisionAllow {
			pterm.Error.Printfln("%s: %s", args[0], decision)
			return errDenied
		}
		pterm.Success.Printfln("%s: %s", args[0], decision)
		return nil
	},
}

var rolesCmd = &cobra.Command{
	Use:   "roles [roleId]",
	Short: "List roles, or the menu grants of one role",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := newCoordinator()
		if err != nil {
			return err
		}
		if err := requireSession(c); err != nil {
			return err
		}

		if len(args) == 0 {
			roles, err := c.Roles(cmd.Context())
			if err != nil {
				return err
			}
			rows := pterm.TableData{{"ID", "CODE", "NAME", "ACTIVE"}}
			for _, r := range roles {
				rows = append(rows, []string{fmt.Sprint(r.RoleID), r.RoleCode, r.RoleName, fmt.Sprint(r.IsActive)})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		}

		roleID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid role id %q", args[0])
		}
		grants, err := c.RoleMenus(cmd.Context(), roleID)
		if err != nil {
			return err
		}
		rows := pterm.TableData{{"MENU ID", "MENU", "READ", "CREATE", "UPDATE", "DELETE"}}
		for _, g := range grants {
			rows = append(rows, []string{fmt.Sprint(g.MenuID), g.MenuName, mark(g.CanRead), mark(g.CanCreate), mark(g.CanUpdate), mark(g.CanDelete)})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}

func mark(b bool) string {
	if b {
		return "x"
	}
	return ""
}

var getCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "GET an API path such as /menus and print the response data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := newCoordinator()
		if err != nil {
			return err
		}
		raw, err := c.GetRaw(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		var out bytes.Buffer
		if err := json.Indent(&out, raw, "", "  "); err != nil {
			fmt.Println(string(raw))
			return nil
		}
		fmt.Println(out.String())
		return nil
	},
}
