package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ludapartners/luda-mind/internal/core/gmv"
	"github.com/ludapartners/luda-mind/internal/core/intent"
	"github.com/ludapartners/luda-mind/internal/core/resolver"
)

const maxTableRows = 30

// formatAnswer turns raw rows into the Spanish markdown answer the dashboard
// renders verbatim.
func formatAnswer(qi *intent.QueryIntent, rows []map[string]interface{}) string {
	if len(rows) == 0 {
		return "No he encontrado resultados para esa consulta."
	}

	if qi.MatchedTemplate == intent.TemplatePartnerGMVSummary {
		return formatPartnerGMVSummary(qi, rows)
	}

	switch qi.OutputShape {
	case intent.ShapeCount:
		return formatCount(rows)
	case intent.ShapeList:
		return formatTable(rows)
	default:
		// Aggregations over raw order documents go through the GMV
		// calculator; anything already aggregated renders as a table.
		if orders, ok := ordersFromRows(rows); ok {
			return formatGMVResult(gmv.ComputeTotal(orders, true))
		}
		return formatTable(rows)
	}
}

// formatCount reads a single-value count row ({count: N} or similar).
func formatCount(rows []map[string]interface{}) string {
	if len(rows) == 1 {
		for _, key := range []string{"count", "total", "n"} {
			if v, ok := rows[0][key]; ok {
				return fmt.Sprintf("**%d** resultados.", int64(toFloat(v)))
			}
		}
		if len(rows[0]) == 1 {
			for _, v := range rows[0] {
				return fmt.Sprintf("**%d** resultados.", int64(toFloat(v)))
			}
		}
	}
	return fmt.Sprintf("**%d** resultados.", len(rows))
}

// formatTable renders rows as a markdown table with stable column order.
func formatTable(rows []map[string]interface{}) string {
	columns := map[string]bool{}
	for _, row := range rows {
		for k := range row {
			columns[k] = true
		}
	}
	keys := make([]string, 0, len(columns))
	for k := range columns {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("| " + strings.Join(keys, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat(" --- |", len(keys)) + "\n")

	limit := len(rows)
	if limit > maxTableRows {
		limit = maxTableRows
	}
	for _, row := range rows[:limit] {
		cells := make([]string, len(keys))
		for i, k := range keys {
			cells[i] = formatCell(row[k])
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	if len(rows) > maxTableRows {
		sb.WriteString(fmt.Sprintf("\n_Mostrando %d de %d resultados._\n", maxTableRows, len(rows)))
	}
	return sb.String()
}

// formatPartnerGMVSummary renders the cancellation-breakdown rows of the
// partner GMV template.
func formatPartnerGMVSummary(qi *intent.QueryIntent, rows []map[string]interface{}) string {
	var completedGMV, cancelledGMV float64
	var completedCount, cancelledCount int64

	for _, row := range rows {
		cancelled, _ := row["_id"].(bool)
		if cancelled {
			cancelledGMV = toFloat(row["gmv"])
			cancelledCount = int64(toFloat(row["bookings"]))
		} else {
			completedGMV = toFloat(row["gmv"])
			completedCount = int64(toFloat(row["bookings"]))
		}
	}

	name := "el partner"
	if qi.Entities.Partner != nil {
		name = qi.Entities.Partner.DisplayName
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Resumen de **%s**:\n\n", name))
	sb.WriteString(fmt.Sprintf("- GMV: **%.2f €** en %d pedidos\n", completedGMV, completedCount))
	sb.WriteString(fmt.Sprintf("- Cancelados: %.2f € en %d pedidos\n", cancelledGMV, cancelledCount))
	return sb.String()
}

func formatGMVResult(res gmv.Result) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("GMV total: **%s €** (%d pedidos)\n", res.Total.StringFixed(2), res.OrderCount))
	if res.Breakdown != nil {
		sb.WriteString(fmt.Sprintf("- Ecommerce: %s €\n", res.Breakdown.Ecommerce.StringFixed(2)))
		sb.WriteString(fmt.Sprintf("- Desabastecimientos: %s €\n", res.Breakdown.Shortage.StringFixed(2)))
	}
	return sb.String()
}

// clarificationAnswer turns entity-resolution failures into the clarifying
// question the user sees. Ambiguity is never auto-resolved.
func clarificationAnswer(err error) (string, bool) {
	var ambiguous *resolver.AmbiguousEntityError
	if errors.As(err, &ambiguous) {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("He encontrado varias coincidencias para \"%s\". ¿A cuál te refieres?\n\n", ambiguous.Input))
		for _, c := range ambiguous.Candidates {
			sb.WriteString(fmt.Sprintf("- %s (código %s)\n", c.Label, c.ID))
		}
		sb.WriteString("\nIndícame el código para continuar.")
		return sb.String(), true
	}
	var unresolved *resolver.UnresolvedEntityError
	if errors.As(err, &unresolved) {
		return fmt.Sprintf("No he podido identificar \"%s\". ¿Puedes indicarlo de otra forma?", unresolved.Input), true
	}
	return "", false
}

// ordersFromRows recognizes raw booking documents (items / thirdUser fields)
// so aggregations over them can go through the hybrid GMV rule.
func ordersFromRows(rows []map[string]interface{}) ([]gmv.Order, bool) {
	orders := make([]gmv.Order, 0, len(rows))
	for _, row := range rows {
		_, hasItems := row["items"]
		_, hasThirdUser := row["thirdUser"]
		if !hasItems && !hasThirdUser {
			return nil, false
		}
		orders = append(orders, orderFromRow(row))
	}
	return orders, len(orders) > 0
}

func orderFromRow(row map[string]interface{}) gmv.Order {
	order := gmv.Order{}
	if id, ok := row["_id"].(string); ok {
		order.ID = id
	}
	if p, ok := row["partner"].(string); ok {
		order.PartnerID = p
	}
	if origin, ok := row["originPharmacyId"].(string); ok {
		order.OriginPharmacyID = origin
	}
	if tu := asDoc(row["thirdUser"]); tu != nil {
		if price, ok := tu["price"]; ok && price != nil {
			d := decimal.NewFromFloat(toFloat(price))
			order.ThirdUserPrice = &d
		}
	}
	for _, raw := range asArray(row["items"]) {
		item := asDoc(raw)
		if item == nil {
			continue
		}
		order.Items = append(order.Items, gmv.Item{
			UnitPrice: decimal.NewFromFloat(toFloat(item["unitPrice"])),
			Quantity:  int64(toFloat(item["quantity"])),
		})
	}
	return order
}

func asDoc(v interface{}) map[string]interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return t
	case bson.M:
		return t
	case bson.D:
		return t.Map()
	}
	return nil
}

func asArray(v interface{}) []interface{} {
	switch t := v.(type) {
	case []interface{}:
		return t
	case bson.A:
		return t
	}
	return nil
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	}
	return 0
}

func formatCell(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.2f", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
