package entity

// LinkReport lists the links found on a page.
type LinkReport struct {
	PageURL  string   `json:"page_url"`
	Internal []string `json:"internal"`
	External []string `json:"external"`
}

// Total is the number of distinct links found.
func (r LinkReport) Total() int {
	return len(r.Internal) + len(r.External)
}
