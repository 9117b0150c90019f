package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Timetable API",
        "description": "Constraint-based school timetabling: CSV dataset in, weekly timetable and report artifacts out.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Dataset", "description": "CSV dataset lifecycle and validation"},
        {"name": "Schedule", "description": "Solve runs, jobs and timetable views"},
        {"name": "Reports", "description": "Generated artifacts and signed downloads"}
    ],
    "paths": {
        "/dataset/summary": {
            "get": {
                "tags": ["Dataset"],
                "summary": "Dataset summary",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Dataset not loaded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dataset/seed": {
            "post": {
                "tags": ["Dataset"],
                "summary": "Seed missing dataset files",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dataset/reload": {
            "post": {
                "tags": ["Dataset"],
                "summary": "Reload the dataset from disk",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Malformed CSV data", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dataset/validation": {
            "get": {
                "tags": ["Dataset"],
                "summary": "Validate the loaded dataset",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/solve": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Solve the timetable synchronously",
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/SolveRequest"}}
                ],
                "responses": {
                    "200": {"description": "Solved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "408": {"description": "Search aborted by a limit", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "No schedule satisfies all constraints", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Dataset configuration invalid", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/jobs": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Enqueue an asynchronous solve",
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/SolveRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/jobs/{id}": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Solve job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/assignments": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Flat assignment rows of the latest timetable",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No timetable yet", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/classes/{id}": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Weekly grid for one class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown class or no timetable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/teachers/{id}": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Weekly grid for one teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown teacher or no timetable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Generate the report artifact set",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No timetable yet", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Reports"],
                "summary": "Current report manifest with fresh download links",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No reports generated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/download": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download one generated report file",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "403": {"description": "Token rejected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SolveRequest": {
            "type": "object",
            "properties": {
                "time_limit_seconds": {"type": "integer", "minimum": 1, "maximum": 600},
                "node_limit": {"type": "integer", "minimum": 1, "maximum": 1000000000}
            }
        },
        "SolveSummary": {
            "type": "object",
            "properties": {
                "outcome": {"type": "string", "enum": ["success", "infeasible", "config_invalid", "aborted", "error"]},
                "sessions": {"type": "integer"},
                "nodes": {"type": "integer"},
                "backtracks": {"type": "integer"},
                "elapsed_ms": {"type": "integer"}
            }
        },
        "AssignmentRow": {
            "type": "object",
            "properties": {
                "line_id": {"type": "string"},
                "occurrence": {"type": "integer"},
                "class_id": {"type": "string"},
                "class_name": {"type": "string"},
                "subject_id": {"type": "string"},
                "subject_name": {"type": "string"},
                "teacher_id": {"type": "string"},
                "teacher_name": {"type": "string"},
                "day": {"type": "integer"},
                "period": {"type": "integer"},
                "room_id": {"type": "string"}
            }
        },
        "GridCell": {
            "type": "object",
            "properties": {
                "subject_id": {"type": "string"},
                "subject_name": {"type": "string"},
                "teacher_id": {"type": "string"},
                "teacher_name": {"type": "string"},
                "class_id": {"type": "string"},
                "class_name": {"type": "string"},
                "room_id": {"type": "string"}
            }
        },
        "TimetableGrid": {
            "type": "object",
            "properties": {
                "owner_id": {"type": "string"},
                "owner_name": {"type": "string"},
                "days": {"type": "array", "items": {"type": "integer"}},
                "periods": {"type": "array", "items": {"type": "integer"}},
                "cells": {
                    "type": "array",
                    "items": {"type": "array", "items": {"$ref": "#/definitions/GridCell"}}
                }
            }
        },
        "SolveJob": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "status": {"type": "string", "enum": ["queued", "running", "succeeded", "failed"]},
                "submitted_at": {"type": "string"},
                "started_at": {"type": "string"},
                "finished_at": {"type": "string"},
                "error_code": {"type": "string"},
                "error_message": {"type": "string"},
                "summary": {"$ref": "#/definitions/SolveSummary"}
            }
        },
        "DatasetSummary": {
            "type": "object",
            "properties": {
                "data_dir": {"type": "string"},
                "seeded": {"type": "boolean"},
                "teachers": {"type": "integer"},
                "classes": {"type": "integer"},
                "rooms": {"type": "integer"},
                "subjects": {"type": "integer"},
                "curriculum_lines": {"type": "integer"},
                "sessions_per_week": {"type": "integer"},
                "days": {"type": "integer"},
                "periods": {"type": "integer"},
                "timeslots": {"type": "integer"},
                "unavailability_rules": {"type": "integer"}
            }
        },
        "ValidationIssue": {
            "type": "object",
            "properties": {
                "table": {"type": "string"},
                "record_id": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "ValidationReport": {
            "type": "object",
            "properties": {
                "errors": {"type": "array", "items": {"$ref": "#/definitions/ValidationIssue"}},
                "warnings": {"type": "array", "items": {"$ref": "#/definitions/ValidationIssue"}}
            }
        },
        "ReportFile": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "size_bytes": {"type": "integer"},
                "download_url": {"type": "string"},
                "expires_at": {"type": "string"}
            }
        },
        "ReportManifest": {
            "type": "object",
            "properties": {
                "report_id": {"type": "string"},
                "generated_at": {"type": "string"},
                "files": {"type": "array", "items": {"$ref": "#/definitions/ReportFile"}}
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
