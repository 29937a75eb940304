package vantixapi

import (
	"context"
	"net/http"
	"net/url"
)

func (c *API) ListExpenses(ctx context.Context, token string, planID int64) ([]Expense, error) {
	q := url.Values{}
	setID(q, "id_plan", planID)
	var out []Expense
	err := c.do(ctx, request{
		op:       "list expenses",
		fallback: "Error al obtener gastos",
		method:   http.MethodGet,
		path:     "/finanzas/",
		query:    q,
		token:    token,
	}, &out)
	return out, err
}

func (c *API) CreateExpense(ctx context.Context, token string, in ExpenseInput) (Expense, error) {
	var out Expense
	err := c.do(ctx, request{
		op:       "create expense",
		fallback: "Error al registrar el gasto",
		method:   http.MethodPost,
		path:     "/finanzas/",
		token:    token,
		json:     in,
	}, &out)
	return out, err
}

func (c *API) UpdateExpense(ctx context.Context, token string, id int64, in ExpenseInput) (Expense, error) {
	var out Expense
	err := c.do(ctx, request{
		op:       "update expense",
		fallback: "Error al actualizar el gasto",
		method:   http.MethodPut,
		path:     "/finanzas/" + pathID(id),
		token:    token,
		json:     in,
	}, &out)
	return out, err
}

func (c *API) DeleteExpense(ctx context.Context, token string, id int64) error {
	return c.do(ctx, request{
		op:       "delete expense",
		fallback: "Error al eliminar el gasto",
		method:   http.MethodDelete,
		path:     "/finanzas/" + pathID(id),
		token:    token,
	}, nil)
}

func (c *API) ExpenseTotal(ctx context.Context, token string, planID int64) (ExpenseTotal, error) {
	var out ExpenseTotal
	err := c.do(ctx, request{
		op:       "expense total",
		fallback: "Error al obtener el total de gastos",
		method:   http.MethodGet,
		path:     "/finanzas/total/" + pathID(planID),
		token:    token,
	}, &out)
	return out, err
}
