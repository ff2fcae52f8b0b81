package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Courtside API",
        "description": "Coach/student booking platform: programs, enrollments, sessions and tournaments",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Programs", "description": "Training program catalog"},
        {"name": "Enrollments", "description": "Enrollment lifecycle, sessions and payments"},
        {"name": "Tournaments", "description": "Tournaments, registrations and brackets"},
        {"name": "Exports", "description": "CSV/PDF exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/programs": {
            "get": {
                "tags": ["Programs"],
                "summary": "List training programs",
                "parameters": [
                    {"name": "coachId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Programs"],
                "summary": "Publish a training program",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateProgramRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/programs/{id}": {
            "get": {
                "tags": ["Programs"],
                "summary": "Get training program",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Programs"],
                "summary": "Retire training program",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/enrollments": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student into a program",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/{id}": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Get enrollment with sessions and payment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/{id}/attendance": {
            "put": {
                "tags": ["Enrollments"],
                "summary": "Mark attendance for a session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Coach already booked or enrollment closed"}
                }
            }
        },
        "/enrollments/{id}/cancel": {
            "put": {
                "tags": ["Enrollments"],
                "summary": "Cancel enrollment with pro-rated refund",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CancelEnrollmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/{id}/complete": {
            "put": {
                "tags": ["Enrollments"],
                "summary": "Mark enrollment completed",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Sessions still outstanding"}
                }
            }
        },
        "/enrollments/{id}/sessions/{sessionId}": {
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Cancel a single pending session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "sessionId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{studentId}/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List a student's enrollments",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/coaches/{coachId}/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List enrollments across a coach's programs",
                "parameters": [
                    {"name": "coachId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/coaches/{coachId}/sessions/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export coach session schedule as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "coachId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV file"}
                }
            }
        },
        "/tournaments": {
            "get": {
                "tags": ["Tournaments"],
                "summary": "List tournaments",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "sport", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Tournaments"],
                "summary": "Create tournament",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTournamentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tournaments/{id}": {
            "get": {
                "tags": ["Tournaments"],
                "summary": "Get tournament with registrations and bracket",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Tournaments"],
                "summary": "Delete tournament",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/tournaments/{id}/registrations": {
            "post": {
                "tags": ["Tournaments"],
                "summary": "Register a student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate registration or tournament full"}
                }
            }
        },
        "/tournaments/{id}/bracket": {
            "post": {
                "tags": ["Tournaments"],
                "summary": "Generate single-elimination bracket",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Bracket already generated"}
                }
            }
        },
        "/tournaments/{id}/bracket/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export bracket as PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF file"}
                }
            }
        },
        "/tournaments/{id}/matches/{matchId}/result": {
            "put": {
                "tags": ["Tournaments"],
                "summary": "Report match result and advance winner",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "matchId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReportResultRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tournaments/{id}/matches/{matchId}/schedule": {
            "put": {
                "tags": ["Tournaments"],
                "summary": "Assign court and time to a match",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "matchId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleMatchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{studentId}/tournaments": {
            "get": {
                "tags": ["Tournaments"],
                "summary": "List tournaments a student registered in",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateProgramRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "sport": {"type": "string"},
                "level": {"type": "string"},
                "duration_days": {"type": "integer"},
                "total_sessions": {"type": "integer"},
                "frequency": {"type": "integer"},
                "price": {"type": "string"},
                "slots": {"type": "array", "items": {"type": "string"}},
                "description": {"type": "string"},
                "coach_id": {"type": "string"},
                "coach_name": {"type": "string"}
            },
            "required": ["title", "sport", "level", "duration_days", "total_sessions", "slots", "coach_id"]
        },
        "EnrollRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "program_id": {"type": "string"},
                "slot": {"type": "string"},
                "payment_type": {"type": "string", "enum": ["per_session", "full_advance"]},
                "start_date": {"type": "string"}
            },
            "required": ["student_id", "program_id", "slot", "payment_type", "start_date"]
        },
        "MarkAttendanceRequest": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "attendance": {"type": "string", "enum": ["present", "absent"]},
                "date": {"type": "string"}
            },
            "required": ["session_id", "attendance", "date"]
        },
        "CancelEnrollmentRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            },
            "required": ["reason"]
        },
        "CreateTournamentRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "sport": {"type": "string"},
                "venue_name": {"type": "string"},
                "venue_city": {"type": "string"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "registration_open_at": {"type": "string"},
                "registration_close_at": {"type": "string"},
                "max_participants": {"type": "integer"},
                "entry_fee": {"type": "string"},
                "currency": {"type": "string"},
                "visibility": {"type": "string", "enum": ["public", "private"]},
                "format": {"type": "string", "enum": ["solo", "duo", "team"]}
            },
            "required": ["title", "sport", "venue_name", "start_date", "end_date", "max_participants", "format"]
        },
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "student": {"type": "string"},
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "dob": {"type": "string"},
                "emergency_contact_name": {"type": "string"},
                "emergency_contact_phone": {"type": "string"},
                "team_name": {"type": "string"},
                "format": {"type": "string", "enum": ["solo", "duo", "team"]}
            },
            "required": ["student", "full_name", "email", "phone", "dob", "format"]
        },
        "ReportResultRequest": {
            "type": "object",
            "properties": {
                "score_a": {"type": "integer"},
                "score_b": {"type": "integer"},
                "winner": {"type": "string"}
            },
            "required": ["winner"]
        },
        "ScheduleMatchRequest": {
            "type": "object",
            "properties": {
                "court": {"type": "string"},
                "scheduled_at": {"type": "string"}
            },
            "required": ["court", "scheduled_at"]
        },
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
