package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": [
        "http"
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "health"
                ],
                "summary": "Liveness",
                "responses": {
                    "200": {
                        "description": "Server is healthy"
                    }
                }
            }
        },
        "/api/health": {
            "get": {
                "tags": [
                    "health"
                ],
                "summary": "API liveness",
                "responses": {
                    "200": {
                        "description": "API is running"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "tags": [
                    "health"
                ],
                "summary": "Readiness",
                "description": "Checks the database",
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "Database not ready"
                    }
                }
            }
        },
        "/api/tasks": {
            "get": {
                "tags": [
                    "tasks"
                ],
                "summary": "List tasks",
                "description": "The day window applies only when both from and to are given",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "in": "query",
                        "name": "from",
                        "type": "string",
                        "description": "First day (YYYY-MM-DD)"
                    },
                    {
                        "in": "query",
                        "name": "to",
                        "type": "string",
                        "description": "Last day (YYYY-MM-DD)"
                    },
                    {
                        "in": "query",
                        "name": "status",
                        "type": "string",
                        "description": "pending, done, abandoned or all"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ListTasksResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ErrorResponse"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "tasks"
                ],
                "summary": "Create a task",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "required": true,
                        "description": "Request body",
                        "schema": {
                            "$ref": "#/definitions/TaskRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/Task"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/tasks/all": {
            "get": {
                "tags": [
                    "tasks"
                ],
                "summary": "List every task",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/TasksResponse"
                        }
                    }
                }
            }
        },
        "/api/tasks/{id}": {
            "get": {
                "tags": [
                    "tasks"
                ],
                "summary": "Get a task",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "integer",
                        "required": true,
                        "description": "Task ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Task"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ErrorResponse"
                        }
                    }
                }
            },
            "put": {
                "tags": [
                    "tasks"
                ],
                "summary": "Replace a task",
                "description": "Omitted optional fields are reset",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "integer",
                        "required": true,
                        "description": "Task ID"
                    },
                    {
                        "in": "body",
                        "name": "request",
                        "required": true,
                        "description": "Request body",
                        "schema": {
                            "$ref": "#/definitions/TaskRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Task"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ErrorResponse"
                        }
                    }
                }
            },
            "patch": {
                "tags": [
                    "tasks"
                ],
                "summary": "Update some fields",
                "description": "Only present fields change; null clears nullable fields; unknown fields are rejected",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "integer",
                        "required": true,
                        "description": "Task ID"
                    },
                    {
                        "in": "body",
                        "name": "request",
                        "required": true,
                        "description": "Any subset of the task fields",
                        "schema": {
                            "$ref": "#/definitions/TaskRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Task"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ErrorResponse"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "tasks"
                ],
                "summary": "Delete a task and its subtasks",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "integer",
                        "required": true,
                        "description": "Task ID"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/tasks/{id}/subtasks": {
            "post": {
                "tags": [
                    "tasks"
                ],
                "summary": "Add a subtask for today",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "integer",
                        "required": true,
                        "description": "Parent task ID"
                    },
                    {
                        "in": "body",
                        "name": "request",
                        "required": false,
                        "description": "Request body",
                        "schema": {
                            "$ref": "#/definitions/SubtaskRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/Task"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/tasks/postpone": {
            "post": {
                "tags": [
                    "tasks"
                ],
                "summary": "Move overdue tasks to today",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "required": false,
                        "description": "Request body",
                        "schema": {
                            "$ref": "#/definitions/PostponeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/PostponeResult"
                        }
                    }
                }
            }
        },
        "/api/tasks/board": {
            "get": {
                "tags": [
                    "tasks"
                ],
                "summary": "Grouped and flattened task board",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "in": "query",
                        "name": "category",
                        "type": "string",
                        "description": "Category, uncategorized, or empty for all"
                    },
                    {
                        "in": "query",
                        "name": "expanded",
                        "type": "string",
                        "description": "Comma-separated ids to expand, or all"
                    },
                    {
                        "in": "query",
                        "name": "today",
                        "type": "string",
                        "description": "Override today (YYYY-MM-DD)"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/BoardResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/tasks/calendar": {
            "get": {
                "tags": [
                    "tasks"
                ],
                "summary": "Tasks per calendar day",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "in": "query",
                        "name": "from",
                        "type": "string",
                        "description": "First day"
                    },
                    {
                        "in": "query",
                        "name": "to",
                        "type": "string",
                        "description": "Last day"
                    },
                    {
                        "in": "query",
                        "name": "view",
                        "type": "string",
                        "description": "week or month"
                    },
                    {
                        "in": "query",
                        "name": "date",
                        "type": "string",
                        "description": "Day inside the view"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/CalendarResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/tasks/stats": {
            "get": {
                "tags": [
                    "tasks"
                ],
                "summary": "Task analytics",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "in": "query",
                        "name": "days",
                        "type": "integer",
                        "description": "Trend length in days"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/ErrorResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "Task": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "title": {
                    "type": "string"
                },
                "description": {
                    "type": "string",
                    "x-nullable": true
                },
                "date": {
                    "type": "string",
                    "example": "2024-01-02",
                    "x-nullable": true
                },
                "rangeStart": {
                    "type": "string",
                    "x-nullable": true
                },
                "rangeEnd": {
                    "type": "string",
                    "x-nullable": true
                },
                "allDay": {
                    "type": "boolean"
                },
                "startTime": {
                    "type": "string",
                    "example": "09:30",
                    "x-nullable": true
                },
                "endTime": {
                    "type": "string",
                    "x-nullable": true
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "pending",
                        "done",
                        "abandoned"
                    ]
                },
                "quadrant": {
                    "type": "string",
                    "enum": [
                        "IU",
                        "IN",
                        "NU",
                        "NN"
                    ]
                },
                "categories": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "dueAt": {
                    "type": "string",
                    "format": "date-time",
                    "x-nullable": true
                },
                "completedAt": {
                    "type": "string",
                    "format": "date-time",
                    "x-nullable": true
                },
                "parentId": {
                    "type": "integer",
                    "x-nullable": true
                },
                "order": {
                    "type": "integer",
                    "x-nullable": true
                },
                "createdAt": {
                    "type": "string",
                    "format": "date-time"
                },
                "updatedAt": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "TaskRequest": {
            "type": "object",
            "required": [
                "title"
            ],
            "properties": {
                "title": {
                    "type": "string"
                },
                "description": {
                    "type": "string",
                    "x-nullable": true
                },
                "date": {
                    "type": "string",
                    "example": "2024-01-02",
                    "x-nullable": true
                },
                "rangeStart": {
                    "type": "string",
                    "x-nullable": true
                },
                "rangeEnd": {
                    "type": "string",
                    "x-nullable": true
                },
                "allDay": {
                    "type": "boolean"
                },
                "startTime": {
                    "type": "string",
                    "example": "09:30",
                    "x-nullable": true
                },
                "endTime": {
                    "type": "string",
                    "x-nullable": true
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "pending",
                        "done",
                        "abandoned"
                    ]
                },
                "quadrant": {
                    "type": "string",
                    "enum": [
                        "IU",
                        "IN",
                        "NU",
                        "NN"
                    ]
                },
                "categories": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "dueAt": {
                    "type": "string",
                    "format": "date-time",
                    "x-nullable": true
                },
                "completedAt": {
                    "type": "string",
                    "format": "date-time",
                    "x-nullable": true
                },
                "parentId": {
                    "type": "integer",
                    "x-nullable": true
                },
                "order": {
                    "type": "integer",
                    "x-nullable": true
                }
            }
        },
        "SubtaskRequest": {
            "type": "object",
            "properties": {
                "title": {
                    "type": "string"
                }
            }
        },
        "PostponeRequest": {
            "type": "object",
            "properties": {
                "ids": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                }
            }
        },
        "PostponeResult": {
            "type": "object",
            "properties": {
                "day": {
                    "type": "string"
                },
                "moved": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                }
            }
        },
        "ListTasksResponse": {
            "type": "object",
            "properties": {
                "from": {
                    "type": "string",
                    "x-nullable": true
                },
                "to": {
                    "type": "string",
                    "x-nullable": true
                },
                "tasks": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/Task"
                    }
                }
            }
        },
        "TasksResponse": {
            "type": "object",
            "properties": {
                "tasks": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/Task"
                    }
                }
            }
        },
        "Row": {
            "type": "object",
            "properties": {
                "task": {
                    "$ref": "#/definitions/Task"
                },
                "level": {
                    "type": "integer"
                },
                "hasChildren": {
                    "type": "boolean"
                },
                "expanded": {
                    "type": "boolean"
                },
                "completedCount": {
                    "type": "integer"
                },
                "totalCount": {
                    "type": "integer"
                }
            }
        },
        "Section": {
            "type": "object",
            "properties": {
                "bucket": {
                    "type": "string",
                    "enum": [
                        "overdue",
                        "today",
                        "future",
                        "done"
                    ]
                },
                "count": {
                    "type": "integer"
                },
                "rows": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/Row"
                    }
                }
            }
        },
        "BoardResponse": {
            "type": "object",
            "properties": {
                "today": {
                    "type": "string"
                },
                "category": {
                    "type": "string"
                },
                "sections": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/Section"
                    }
                }
            }
        },
        "Day": {
            "type": "object",
            "properties": {
                "date": {
                    "type": "string"
                },
                "tasks": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/Task"
                    }
                }
            }
        },
        "CalendarResponse": {
            "type": "object",
            "properties": {
                "from": {
                    "type": "string"
                },
                "to": {
                    "type": "string"
                },
                "days": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/Day"
                    }
                }
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {
                    "type": "string"
                },
                "details": {
                    "type": "object"
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type 'Bearer' followed by a space and JWT token"
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Planner API",
	Description:      "Personal task planner: tasks, subtasks, board, calendar and analytics",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
