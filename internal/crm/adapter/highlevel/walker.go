package highlevel

import (
	"context"

	"crm-mirror/internal/crm/domain/client"
)

// walkPageSize is the page size used when draining the remote search.
const walkPageSize = 100

// FetchAllOpportunities drains the remote opportunity search for the tenant,
// optionally scoped to one pipeline. The first page carries no cursor; the
// walk continues only while a page comes back full AND the response meta
// carries both cursor fields. A meta with only an offset-style nextPage stops
// the walk: switching to page-based offsets mid-walk could re-read or skip
// records, so the partial result is returned instead.
func (c *Client) FetchAllOpportunities(ctx context.Context, pipelineID string) ([]client.RemoteOpportunity, error) {
	var all []client.RemoteOpportunity
	var startAfter, startAfterID string

	for firstPage := true; ; firstPage = false {
		params := client.SearchParams{
			PipelineID: pipelineID,
			Limit:      walkPageSize,
		}
		if !firstPage {
			if startAfter == "" || startAfterID == "" {
				break
			}
			params.StartAfter = startAfter
			params.StartAfterID = startAfterID
		}

		page, err := c.SearchOpportunities(ctx, params)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Opportunities...)

		if len(page.Opportunities) < walkPageSize {
			break
		}

		if page.Meta.HasCursor() {
			startAfter = page.Meta.StartAfter.String()
			startAfterID = page.Meta.StartAfterID
			continue
		}

		if page.Meta.NextPage != nil {
			c.log.WithFields(map[string]interface{}{
				"fetched":  len(all),
				"nextPage": *page.Meta.NextPage,
			}).Warn("search returned offset pagination without cursor fields, stopping walk")
		}
		break
	}

	return all, nil
}
