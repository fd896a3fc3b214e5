// Package graphql exposes a read-only GraphQL view over tickets and
// comments. Resolvers go through the same services as the REST handlers.
package graphql

import (
	"time"

	"github.com/graphql-go/graphql"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/service"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

var userType = graphql.NewObject(
	graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":  &graphql.Field{Type: graphql.String},
			"email": &graphql.Field{Type: graphql.String},
		},
	},
)

var ticketType = graphql.NewObject(
	graphql.ObjectConfig{
		Name: "Ticket",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"title":       &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"status":      &graphql.Field{Type: graphql.String},
			"priority":    &graphql.Field{Type: graphql.String},
			"createdBy":   &graphql.Field{Type: graphql.ID},
			"assignedTo":  &graphql.Field{Type: graphql.ID},
			"createdAt":   &graphql.Field{Type: graphql.String},
			"updatedAt":   &graphql.Field{Type: graphql.String},
		},
	},
)

var commentType = graphql.NewObject(
	graphql.ObjectConfig{
		Name: "Comment",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"content":   &graphql.Field{Type: graphql.String},
			"ticketId":  &graphql.Field{Type: graphql.ID},
			"author":    &graphql.Field{Type: userType},
			"createdAt": &graphql.Field{Type: graphql.String},
			"updatedAt": &graphql.Field{Type: graphql.String},
		},
	},
)

// NewSchema builds the query-only schema.
func NewSchema(tickets *service.TicketService, comments *service.CommentService) (graphql.Schema, error) {
	queryType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"tickets": &graphql.Field{
					Type: graphql.NewList(ticketType),
					Args: graphql.FieldConfigArgument{
						"search":    &graphql.ArgumentConfig{Type: graphql.String},
						"status":    &graphql.ArgumentConfig{Type: graphql.String},
						"sortBy":    &graphql.ArgumentConfig{Type: graphql.String},
						"sortOrder": &graphql.ArgumentConfig{Type: graphql.String},
					},
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						if err := requireCaller(p); err != nil {
							return nil, err
						}
						list, err := tickets.ListTickets(p.Context, service.TicketListInput{
							Search:    stringArg(p, "search"),
							Status:    stringArg(p, "status"),
							SortBy:    stringArg(p, "sortBy"),
							SortOrder: stringArg(p, "sortOrder"),
						})
						if err != nil {
							return nil, resolverError(err)
						}
						out := make([]map[string]interface{}, 0, len(list))
						for i := range list {
							out = append(out, ticketMap(&list[i]))
						}
						return out, nil
					},
				},
				"ticket": &graphql.Field{
					Type: ticketType,
					Args: graphql.FieldConfigArgument{
						"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					},
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						if err := requireCaller(p); err != nil {
							return nil, err
						}
						ticket, err := tickets.GetTicket(p.Context, stringArg(p, "id"))
						if err != nil {
							return nil, resolverError(err)
						}
						return ticketMap(ticket), nil
					},
				},
				"comments": &graphql.Field{
					Type: graphql.NewList(commentType),
					Args: graphql.FieldConfigArgument{
						"ticketId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					},
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						if err := requireCaller(p); err != nil {
							return nil, err
						}
						list, err := comments.ListByTicket(p.Context, stringArg(p, "ticketId"))
						if err != nil {
							return nil, resolverError(err)
						}
						out := make([]map[string]interface{}, 0, len(list))
						for i := range list {
							out = append(out, commentMap(&list[i]))
						}
						return out, nil
					},
				},
			},
		},
	)

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}

func stringArg(p graphql.ResolveParams, name string) string {
	val, _ := p.Args[name].(string)
	return val
}

func ticketMap(t *domain.Ticket) map[string]interface{} {
	var assignedTo interface{}
	if t.AssignedTo != nil {
		assignedTo = *t.AssignedTo
	}
	return map[string]interface{}{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"status":      string(t.Status),
		"priority":    string(t.Priority),
		"createdBy":   t.CreatedBy,
		"assignedTo":  assignedTo,
		"createdAt":   formatTime(t.CreatedAt),
		"updatedAt":   formatTime(t.UpdatedAt),
	}
}

func commentMap(c *domain.Comment) map[string]interface{} {
	return map[string]interface{}{
		"id":       c.ID,
		"content":  c.Content,
		"ticketId": c.TicketID,
		"author": map[string]interface{}{
			"id":    c.Author.ID,
			"name":  c.Author.Name,
			"email": c.Author.Email,
		},
		"createdAt": formatTime(c.CreatedAt),
		"updatedAt": formatTime(c.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// fieldError carries the error taxonomy code into the GraphQL error's
// extensions.
type fieldError struct {
	code    string
	message string
	details map[string]any
}

func (e *fieldError) Error() string { return e.message }

func (e *fieldError) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.code}
	if len(e.details) > 0 {
		ext["details"] = e.details
	}
	return ext
}

func resolverError(err error) error {
	domainErr := apperrors.ToDomainError(err)
	return &fieldError{code: domainErr.Code, message: domainErr.Message, details: domainErr.Details}
}
