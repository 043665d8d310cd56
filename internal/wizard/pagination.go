package wizard

// Device lists are shown 9 per page in button rows of 3.
const (
	devicesPerPage = 9
	buttonsPerRow  = 3
)

// pageCount returns the number of pages for n items, at least 1.
func pageCount(n int) int {
	pages := (n + devicesPerPage - 1) / devicesPerPage
	if pages < 1 {
		return 1
	}
	return pages
}

// clampPage keeps a cursor inside [0, pages-1].
func clampPage(page, pages int) int {
	if page < 0 {
		return 0
	}
	if page > pages-1 {
		return pages - 1
	}
	return page
}

// pageSlice returns the items visible on one (already clamped) page.
func pageSlice(items []string, page int) []string {
	start := page * devicesPerPage
	if start >= len(items) {
		return nil
	}
	end := start + devicesPerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
