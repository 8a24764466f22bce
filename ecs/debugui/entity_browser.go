package debugui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/emotesky/ecs"
	"github.com/plus3/emotesky/sky"
)

// EntityRow is one line of the entity browser.
type EntityRow struct {
	ID       ecs.EntityId
	Kind     sky.MotionKind
	Progress float64
	X, Y, Z  float32
	Sprites  string
}

// Entity browser columns.
const (
	ColumnID = iota
	ColumnKind
	ColumnProgress
	ColumnPosition
	ColumnSprites
)

// BuildRows snapshots the registry at the clock's current time.
func BuildRows(registry *sky.Registry, clock ecs.Clock) []EntityRow {
	t := clock.Now()
	rows := make([]EntityRow, 0, registry.Len())
	for e := range registry.All() {
		names := make([]string, len(e.Sprites))
		for i, s := range e.Sprites {
			names[i] = s.Name
		}
		pos := e.WorldPosition()
		progress := 0.0
		if e.Lifespan != sky.Forever {
			progress = e.Progress(t)
		}
		rows = append(rows, EntityRow{
			ID:       e.Id,
			Kind:     e.Motion.Kind,
			Progress: progress,
			X:        pos.X(),
			Y:        pos.Y(),
			Z:        pos.Z(),
			Sprites:  strings.Join(names, " "),
		})
	}
	return rows
}

// FilterRows keeps rows whose id, kind or sprite names contain text,
// ignoring case.
func FilterRows(rows []EntityRow, text string) []EntityRow {
	if text == "" {
		return rows
	}
	needle := strings.ToLower(text)

	filtered := make([]EntityRow, 0, len(rows))
	for _, row := range rows {
		if strings.Contains(fmt.Sprintf("%d", row.ID), needle) ||
			strings.Contains(row.Kind.String(), needle) ||
			strings.Contains(strings.ToLower(row.Sprites), needle) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// SortRows orders rows in place by column. Position sorts by depth.
func SortRows(rows []EntityRow, column int, ascending bool) {
	slices.SortStableFunc(rows, func(a, b EntityRow) int {
		var c int
		switch column {
		case ColumnKind:
			c = cmp.Compare(a.Kind, b.Kind)
		case ColumnProgress:
			c = cmp.Compare(a.Progress, b.Progress)
		case ColumnPosition:
			c = cmp.Compare(a.Z, b.Z)
		case ColumnSprites:
			c = strings.Compare(a.Sprites, b.Sprites)
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if !ascending {
			return -c
		}
		return c
	})
}

// Page returns the rows of page (0-based), the page actually shown after
// clamping, and the number of pages.
func Page(rows []EntityRow, page, perPage int) ([]EntityRow, int, int) {
	if perPage <= 0 {
		return rows, 0, 1
	}
	pages := max((len(rows)+perPage-1)/perPage, 1)
	page = min(max(page, 0), pages-1)
	start := page * perPage
	end := min(start+perPage, len(rows))
	return rows[start:end], page, pages
}

// EntityBrowser lists live entities with filtering, sorting and paging.
type EntityBrowser struct {
	registry *sky.Registry
	clock    ecs.Clock

	filterText    string
	sortColumn    int
	sortAscending bool
	currentPage   int
	perPage       int
	selected      ecs.EntityId
}

func NewEntityBrowser(registry *sky.Registry, clock ecs.Clock, perPage int) *EntityBrowser {
	return &EntityBrowser{
		registry:      registry,
		clock:         clock,
		sortAscending: true,
		perPage:       perPage,
	}
}

// Selected returns the entity picked in the table, or 0.
func (eb *EntityBrowser) Selected() ecs.EntityId {
	return eb.selected
}

func (eb *EntityBrowser) Render() {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
	}

	rows := FilterRows(BuildRows(eb.registry, eb.clock), eb.filterText)

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 5, tableFlags, imgui.NewVec2(0, 300), 0) {
		imgui.TableSetupColumn("Entity ID")
		imgui.TableSetupColumn("Kind")
		imgui.TableSetupColumn("Progress")
		imgui.TableSetupColumn("Position")
		imgui.TableSetupColumn("Sprites")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.sortColumn = int(spec.ColumnIndex())
			eb.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sortSpecs.SetSpecsDirty(false)
		}
		SortRows(rows, eb.sortColumn, eb.sortAscending)

		var visible []EntityRow
		visible, eb.currentPage, _ = Page(rows, eb.currentPage, eb.perPage)
		for _, row := range visible {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := eb.selected == row.ID
			if imgui.SelectableBoolV(fmt.Sprintf("%d", row.ID), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selected = row.ID
			}

			imgui.TableNextColumn()
			imgui.Text(row.Kind.String())

			imgui.TableNextColumn()
			if row.Kind == sky.EmoteDrift {
				imgui.Text(fmt.Sprintf("%.0f%%", row.Progress*100))
			} else {
				imgui.Text("-")
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%.1f, %.1f, %.1f", row.X, row.Y, row.Z))

			imgui.TableNextColumn()
			imgui.Text(row.Sprites)
		}

		imgui.EndTable()
	}

	_, _, totalPages := Page(rows, eb.currentPage, eb.perPage)
	if totalPages > 1 {
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(rows)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(rows)))
	}

	imgui.End()
}
