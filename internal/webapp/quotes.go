package webapp

import (
	"context"
	"net/http"

	"github.com/vantix/vantix/internal/session"
	"github.com/vantix/vantix/internal/vantixapi"
	"github.com/vantix/vantix/internal/views"
)

// quotesPage lists quotation lines from the external sales system, narrowed
// to the selected plan's week unless ?semana=todas.
func (s *server) quotesPage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	data, scope, err := s.scopedPage(r, "Cotizaciones")
	if s.expireSession(w, r, err) {
		return
	}
	if err != nil && data.Error == "" {
		data.Error = vantixapi.Message(err, "Error al obtener planes")
	}

	snap := session.ListFor[vantixapi.QuoteLine](sess.Views(), "quotes").Load(r.Context(), "quotes", func(ctx context.Context) ([]vantixapi.QuoteLine, error) {
		return s.api.ListQuoteLines(ctx, sess.Token, data.ViewedEmployeeID)
	})
	if s.expireSession(w, r, snap.Err) {
		return
	}
	if snap.Err != nil && data.Error == "" {
		data.Error = vantixapi.Message(snap.Err, "Error al obtener cotizaciones")
	}

	lines := snap.Items
	data.Tab = "semana"
	if r.URL.Query().Get("semana") == "todas" || !scope.HasPlan {
		data.Tab = "todas"
	} else {
		lines = views.QuotesInWeek(lines, scope.Selected)
	}
	data.Quotes = views.SearchQuotes(lines, data.Search)
	data.QuotesTotal = views.QuotesTotal(data.Quotes)
	s.render(w, r, s.quotesTmpl, data)
}
