// internal/cli/render.go
package cli

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/zap-pm/zap/pkg/backend"
	"github.com/zap-pm/zap/pkg/multi"
)

// renderResults prints an install summary table and returns an error
// when any package failed.
func renderResults(results []backend.InstallResult) error {
	if len(results) == 0 {
		pterm.Info.Println("Nothing to do")
		return nil
	}

	data := pterm.TableData{{"Package", "Status", "Message"}}
	failed := 0
	for _, res := range results {
		status := pterm.Green("ok")
		if !res.Success {
			status = pterm.Red("failed")
			failed++
		}
		data = append(data, []string{res.Package, status, res.Message})
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d packages failed", failed, len(results))
	}
	pterm.Success.Printf("%d packages processed\n", len(results))
	return nil
}

// renderSearch prints per-backend search results.
func renderSearch(groups []multi.BackendPackages) {
	if len(groups) == 0 {
		pterm.Info.Println("No packages found")
		return
	}

	for _, group := range groups {
		pterm.DefaultSection.Println(group.ID)
		data := pterm.TableData{{"Name", "Version", "Description"}}
		for _, pkg := range group.Packages {
			desc := pkg.Description
			if len(desc) > 72 {
				desc = desc[:69] + "..."
			}
			name := pkg.Name
			if pkg.Installed {
				name += pterm.Green(" [installed]")
			}
			data = append(data, []string{name, pkg.Version, desc})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			pterm.Error.Println(err)
		}
	}
}

// renderInfo prints the detail view of a single package.
func renderInfo(id string, pkg backend.Package) {
	pterm.DefaultSection.Printf("%s (%s)\n", pkg.Name, id)

	rows := [][2]string{
		{"Version", pkg.Version},
		{"Description", pkg.Description},
		{"Maintainer", pkg.Maintainer},
		{"URL", pkg.URL},
	}
	for _, row := range rows {
		if row[1] != "" {
			fmt.Printf("%-12s %s\n", row[0]+":", row[1])
		}
	}
	if pkg.Extra.AurVotes > 0 {
		fmt.Printf("%-12s %d\n", "Votes:", pkg.Extra.AurVotes)
	}
	if len(pkg.Extra.License) > 0 {
		fmt.Printf("%-12s %v\n", "License:", pkg.Extra.License)
	}
	if len(pkg.Extra.Depends) > 0 {
		fmt.Printf("%-12s %v\n", "Depends:", pkg.Extra.Depends)
	}
	if pkg.Extra.OutOfDate != 0 {
		pterm.Warning.Println("Flagged out of date upstream")
	}
	if pkg.Installed {
		pterm.Success.Println("Installed")
	}
}
