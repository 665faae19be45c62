// Package scrape extracts download records from HTML directory-index pages.
//
// A source configures a CSS selector for its entry rows and selectors for
// the name, url and size fields within each row:
//
//	src := &model.Source{
//	    Entries: "tbody tr",
//	    Fields:  model.FieldSelectors{Name: "td.link a", URL: "td.link a", Size: "td.size"},
//	}
//	records, err := scrape.Parse(strings.NewReader(html), pageURL, src)
//
// Entries missing a name or url element are dropped, ignore rules are
// applied before inclusion, and relative hrefs are resolved against the
// page URL. Extraction errors for one source never abort other sources;
// the cache refresher logs them and continues.
package scrape
