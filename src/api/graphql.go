package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/phantom-spire/core-studio/src/config"
	"github.com/phantom-spire/core-studio/src/cores"
	"github.com/phantom-spire/core-studio/src/projects"
)

// GraphQL types

var healthType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Health",
	Fields: graphql.Fields{
		"status":    &graphql.Field{Type: graphql.String},
		"version":   &graphql.Field{Type: graphql.String},
		"uptime":    &graphql.Field{Type: graphql.String},
		"timestamp": &graphql.Field{Type: graphql.String},
	},
})

var systemInfoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "SystemInfo",
	Fields: graphql.Fields{
		"goVersion":    &graphql.Field{Type: graphql.String},
		"numCpu":       &graphql.Field{Type: graphql.Int},
		"numGoroutine": &graphql.Field{Type: graphql.Int},
	},
})

var infoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Info",
	Fields: graphql.Fields{
		"name":        &graphql.Field{Type: graphql.String},
		"version":     &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"uptime":      &graphql.Field{Type: graphql.String},
		"mode":        &graphql.Field{Type: graphql.String},
		"modules":     &graphql.Field{Type: graphql.NewList(graphql.String)},
		"system":      &graphql.Field{Type: systemInfoType},
	},
})

var coreType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Core",
	Fields: graphql.Fields{
		"module":          &graphql.Field{Type: graphql.String},
		"source":          &graphql.Field{Type: graphql.String},
		"accessible":      &graphql.Field{Type: graphql.Boolean},
		"readOperations":  &graphql.Field{Type: graphql.NewList(graphql.String)},
		"writeOperations": &graphql.Field{Type: graphql.NewList(graphql.String)},
	},
})

var projectType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Project",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.String},
		"name":        &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"status":      &graphql.Field{Type: graphql.String},
		"owner":       &graphql.Field{Type: graphql.String},
		"tags":        &graphql.Field{Type: graphql.NewList(graphql.String)},
		"createdAt":   &graphql.Field{Type: graphql.String},
		"updatedAt":   &graphql.Field{Type: graphql.String},
	},
})

// GraphQLHandler handles GraphQL requests. The schema is read-only:
// core writes and project mutations go through the REST surface where
// auth and audit logging apply.
type GraphQLHandler struct {
	schema  graphql.Schema
	handler *Handler
}

// NewGraphQLHandler creates a new GraphQL handler.
func NewGraphQLHandler(h *Handler) (*GraphQLHandler, error) {
	gqlHandler := &GraphQLHandler{handler: h}

	schema, err := gqlHandler.buildSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to build GraphQL schema: %w", err)
	}

	gqlHandler.schema = schema
	return gqlHandler, nil
}

func (g *GraphQLHandler) buildSchema() (graphql.Schema, error) {
	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"healthz": &graphql.Field{
				Type:        healthType,
				Description: "Get health status",
				Resolve:     g.resolveHealthz,
			},

			"info": &graphql.Field{
				Type:        infoType,
				Description: "Get server information",
				Resolve:     g.resolveInfo,
			},

			"cores": &graphql.Field{
				Type:        graphql.NewList(coreType),
				Description: "Get all core modules with their operation surface",
				Resolve:     g.resolveCores,
			},

			"core": &graphql.Field{
				Type:        coreType,
				Description: "Get one core module by name",
				Args: graphql.FieldConfigArgument{
					"module": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(graphql.String),
						Description: "Module name",
					},
				},
				Resolve: g.resolveCore,
			},

			"projects": &graphql.Field{
				Type:        graphql.NewList(projectType),
				Description: "List platform projects",
				Args: graphql.FieldConfigArgument{
					"page": &graphql.ArgumentConfig{
						Type:         graphql.Int,
						DefaultValue: 1,
					},
					"limit": &graphql.ArgumentConfig{
						Type:         graphql.Int,
						DefaultValue: 20,
					},
					"status": &graphql.ArgumentConfig{
						Type:        graphql.String,
						Description: "Filter by status (draft, active, archived)",
					},
				},
				Resolve: g.resolveProjects,
			},

			"project": &graphql.Field{
				Type:        projectType,
				Description: "Get one project by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.String),
					},
				},
				Resolve: g.resolveProject,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// Resolvers

func (g *GraphQLHandler) resolveHealthz(p graphql.ResolveParams) (interface{}, error) {
	return map[string]interface{}{
		"status":    "ok",
		"version":   config.Version,
		"uptime":    time.Since(g.handler.startTime).Round(time.Second).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (g *GraphQLHandler) resolveInfo(p graphql.ResolveParams) (interface{}, error) {
	return map[string]interface{}{
		"name":        g.handler.config.Server.Title,
		"version":     config.Version,
		"description": g.handler.config.Server.Description,
		"uptime":      time.Since(g.handler.startTime).Round(time.Second).String(),
		"mode":        g.handler.config.Server.Mode,
		"modules":     g.handler.registry.Names(),
		"system": map[string]interface{}{
			"goVersion":    runtime.Version(),
			"numCpu":       runtime.NumCPU(),
			"numGoroutine": runtime.NumGoroutine(),
		},
	}, nil
}

func (g *GraphQLHandler) resolveCores(p graphql.ResolveParams) (interface{}, error) {
	return coreReportMaps(g.handler.registry.Verify()), nil
}

func (g *GraphQLHandler) resolveCore(p graphql.ResolveParams) (interface{}, error) {
	module := p.Args["module"].(string)
	core, err := g.handler.registry.Get(module)
	if err != nil {
		return nil, err
	}
	return coreReportMap(cores.CoreReport{
		Module:          core.Name(),
		Source:          core.Source(),
		Accessible:      true,
		ReadOperations:  core.Operations(cores.VerbRead),
		WriteOperations: core.Operations(cores.VerbWrite),
	}), nil
}

func coreReportMaps(reports []cores.CoreReport) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(reports))
	for _, rep := range reports {
		out = append(out, coreReportMap(rep))
	}
	return out
}

func coreReportMap(rep cores.CoreReport) map[string]interface{} {
	return map[string]interface{}{
		"module":          rep.Module,
		"source":          rep.Source,
		"accessible":      rep.Accessible,
		"readOperations":  rep.ReadOperations,
		"writeOperations": rep.WriteOperations,
	}
}

func (g *GraphQLHandler) resolveProjects(p graphql.ResolveParams) (interface{}, error) {
	page, _ := p.Args["page"].(int)
	limit, _ := p.Args["limit"].(int)
	status, _ := p.Args["status"].(string)

	ctx := p.Context
	if ctx == nil {
		ctx = context.Background()
	}

	list, _, err := g.handler.store.List(ctx, projects.ListFilter{
		Page:   page,
		Limit:  limit,
		Status: status,
	})
	if err != nil {
		return nil, err
	}
	return projectMaps(list), nil
}

func (g *GraphQLHandler) resolveProject(p graphql.ResolveParams) (interface{}, error) {
	id := p.Args["id"].(string)

	ctx := p.Context
	if ctx == nil {
		ctx = context.Background()
	}

	project, err := g.handler.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return projectMap(project), nil
}

func projectMaps(list []*projects.Project) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(list))
	for _, p := range list {
		out = append(out, projectMap(p))
	}
	return out
}

func projectMap(p *projects.Project) map[string]interface{} {
	return map[string]interface{}{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"status":      p.Status,
		"owner":       p.Owner,
		"tags":        p.Tags,
		"createdAt":   p.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt":   p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// ServeHTTP handles GraphQL HTTP requests.
func (g *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var params struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	switch r.Method {
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
	case http.MethodGet:
		params.Query = r.URL.Query().Get("query")
		params.OperationName = r.URL.Query().Get("operationName")
		if varsStr := r.URL.Query().Get("variables"); varsStr != "" {
			json.Unmarshal([]byte(varsStr), &params.Variables)
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         g.schema,
		RequestString:  params.Query,
		OperationName:  params.OperationName,
		VariableValues: params.Variables,
		Context:        r.Context(),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// handleGraphQL lazily builds the schema on first use and serves the
// query endpoint.
func (h *Handler) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	h.gqlOnce.Do(func() {
		h.gql, h.gqlErr = NewGraphQLHandler(h)
	})
	if h.gqlErr != nil {
		http.Error(w, "GraphQL unavailable", http.StatusInternalServerError)
		return
	}
	h.gql.ServeHTTP(w, r)
}
