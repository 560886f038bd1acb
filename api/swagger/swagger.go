package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Registration API",
        "description": "Student, course and enrollment records with atomic batch enrollment",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Authentication", "description": "Operator login"},
        {"name": "Students", "description": "Student records and transcripts"},
        {"name": "Courses", "description": "Course catalog and rosters"},
        {"name": "Enrollments", "description": "Single and batch enrollment"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate operator",
                "security": [],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Access token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Inactive operator", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already exists", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{email}/transcript": {
            "get": {
                "tags": ["Students"],
                "summary": "Student transcript",
                "produces": ["application/json", "text/csv", "application/pdf"],
                "parameters": [
                    {"in": "path", "name": "email", "required": true, "type": "string"},
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "Transcript rows or file"}}
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/courses/{code}/roster": {
            "get": {
                "tags": ["Courses"],
                "summary": "Course roster for a term",
                "parameters": [
                    {"in": "path", "name": "code", "required": true, "type": "string"},
                    {"in": "query", "name": "term", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/enrollments": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student in one course",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate or rejected by the store", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/batch": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student in several courses atomically",
                "description": "Either every course is enrolled and committed, or nothing is. The batch report is always returned.",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/BatchEnrollRequest"}}
                ],
                "responses": {
                    "201": {"description": "Committed", "schema": {"$ref": "#/definitions/BatchReport"}},
                    "404": {"description": "Student not found", "schema": {"$ref": "#/definitions/BatchReport"}},
                    "422": {"description": "Rolled back", "schema": {"$ref": "#/definitions/BatchReport"}},
                    "500": {"description": "Infrastructure failure; partial report in meta.report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "BatchEnrollRequest": {
            "type": "object",
            "properties": {
                "student_email": {"type": "string"},
                "term": {"type": "string", "example": "Fall 2025"},
                "course_codes": {"type": "string", "example": "CS157A, cs146"},
                "courses": {"type": "array", "items": {"type": "string"}}
            }
        },
        "CourseOutcome": {
            "type": "object",
            "properties": {
                "course_code": {"type": "string"},
                "classification": {"type": "string", "enum": ["SUCCESS", "NOT_FOUND", "DUPLICATE"]},
                "detail": {"type": "string"}
            }
        },
        "BatchReport": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "student_email": {"type": "string"},
                "student_id": {"type": "integer"},
                "term": {"type": "string"},
                "verdict": {"type": "string", "enum": ["ALL_SUCCEEDED", "HAS_FAILURES", "ABORTED_STUDENT_NOT_FOUND"]},
                "reason": {"type": "string"},
                "outcomes": {"type": "array", "items": {"$ref": "#/definitions/CourseOutcome"}},
                "action": {"type": "string", "enum": ["COMMITTED", "ROLLED_BACK", "ROLLBACK_FAILED"]},
                "rollback_error": {"type": "string"},
                "restore_error": {"type": "string"},
                "started_at": {"type": "string", "format": "date-time"},
                "finished_at": {"type": "string", "format": "date-time"}
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
