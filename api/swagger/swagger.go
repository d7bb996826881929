package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SIS Core API",
        "description": "School information system read models, attendance statistics and scheduled reports",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and session management"},
        {"name": "Access", "description": "Permission checks"},
        {"name": "Attendance", "description": "Attendance statistics"},
        {"name": "BellSchedules", "description": "Bell schedules and display views"},
        {"name": "Substitutes", "description": "Substitute teacher assignments"},
        {"name": "Students", "description": "Student projections"},
        {"name": "Schedules", "description": "Scheduled report executions"},
        {"name": "Platform", "description": "Platform report snapshots"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Rotate refresh token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Change password",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/access/check": {
            "post": {
                "tags": ["Access"],
                "summary": "Evaluate an access request",
                "responses": {
                    "200": {"description": "Decision", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/statistics": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Aggregated attendance statistics",
                "parameters": [
                    {"name": "termId", "in": "query", "type": "string", "required": true},
                    {"name": "campusId", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bell-schedules": {
            "get": {
                "tags": ["BellSchedules"],
                "summary": "List bell schedules",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["BellSchedules"],
                "summary": "Create a bell schedule",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/bell-schedules/{id}": {
            "get": {
                "tags": ["BellSchedules"],
                "summary": "Get a bell schedule",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "tags": ["BellSchedules"],
                "summary": "Update a bell schedule",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["BellSchedules"],
                "summary": "Delete a bell schedule",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/bell-schedules/{id}/view": {
            "get": {
                "tags": ["BellSchedules"],
                "summary": "Flattened display view with computed flags",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/bell-schedules/{id}/overrides": {
            "post": {
                "tags": ["BellSchedules"],
                "summary": "Register a date override",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/substitutes": {
            "get": {
                "tags": ["Substitutes"],
                "summary": "List substitute assignments",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Substitutes"],
                "summary": "Create a substitute assignment",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Overlapping assignment"}}
            }
        },
        "/substitutes/{id}": {
            "get": {
                "tags": ["Substitutes"],
                "summary": "Get a substitute assignment",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Substitutes"],
                "summary": "Delete a substitute assignment",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/students/{id}/summary": {
            "get": {
                "tags": ["Students"],
                "summary": "Flat student summary projection",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "termId", "in": "query", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/schedules/reports": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Schedule a report run",
                "responses": {"202": {"description": "Accepted"}}
            }
        },
        "/schedules/executions": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List report executions",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/schedules/executions/{id}": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Get one execution",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/schedules/executions/{id}/cancel": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Cancel a pending execution",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Already terminal"}}
            }
        },
        "/schedules/executions/download/{token}": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Download a generated report",
                "parameters": [{"name": "token", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "File stream"}, "403": {"description": "Invalid token"}}
            }
        },
        "/platform/olap": {
            "get": {"tags": ["Platform"], "summary": "Warehouse snapshot", "responses": {"200": {"description": "OK"}}}
        },
        "/platform/aiops": {
            "get": {"tags": ["Platform"], "summary": "Automation snapshot", "responses": {"200": {"description": "OK"}}}
        },
        "/platform/quantum": {
            "get": {"tags": ["Platform"], "summary": "Key management snapshot", "responses": {"200": {"description": "OK"}}}
        },
        "/platform/zero-trust": {
            "get": {"tags": ["Platform"], "summary": "Access posture snapshot", "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
