package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Itqan Unified API",
        "description": "Unified session, subscription and statistics reads",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {
            "name": "Unified Sessions",
            "description": "Sessions across quran, academic and course kinds"
        },
        {
            "name": "Unified Subscriptions",
            "description": "Subscriptions and course enrolments"
        },
        {
            "name": "Unified Statistics",
            "description": "Learner statistics and dashboard overview"
        },
        {
            "name": "Unified Cache",
            "description": "Cache invalidation"
        },
        {
            "name": "Metrics",
            "description": "Instrumentation"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {
                        "description": "Ready"
                    }
                }
            }
        },
        "/metrics/system": {
            "get": {
                "tags": [
                    "Metrics"
                ],
                "summary": "Cache and store metrics snapshot",
                "parameters": [],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Deadline exceeded",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/unified/sessions": {
            "get": {
                "tags": [
                    "Unified Sessions"
                ],
                "summary": "Sessions of every kind for a set of learners",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "learnerIds",
                        "in": "query",
                        "type": "string",
                        "description": "Comma separated learner IDs"
                    },
                    {
                        "name": "kinds",
                        "in": "query",
                        "type": "string",
                        "description": "Comma separated kinds: quran, academic, course"
                    },
                    {
                        "name": "status",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "from",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "to",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "cache",
                        "in": "query",
                        "type": "boolean"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Deadline exceeded",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/unified/sessions/instructor": {
            "get": {
                "tags": [
                    "Unified Sessions"
                ],
                "summary": "Sessions of one kind taught by an instructor",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "instructorId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "kind",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "status",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "from",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "to",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Deadline exceeded",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/unified/sessions/upcoming": {
            "get": {
                "tags": [
                    "Unified Sessions"
                ],
                "summary": "Scheduled sessions in the next few days",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "learnerIds",
                        "in": "query",
                        "type": "string",
                        "description": "Comma separated learner IDs"
                    },
                    {
                        "name": "kinds",
                        "in": "query",
                        "type": "string",
                        "description": "Comma separated kinds: quran, academic, course"
                    },
                    {
                        "name": "days",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Deadline exceeded",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/unified/sessions/today": {
            "get": {
                "tags": [
                    "Unified Sessions"
                ],
                "summary": "Sessions scheduled for the current UTC day",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "learnerIds",
                        "in": "query",
                        "type": "string",
                        "description": "Comma separated learner IDs"
                    },
                    {
                        "name": "kinds",
                        "in": "query",
                        "type": "string",
                        "description": "Comma separated kinds: quran, academic, course"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Deadline exceeded",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/unified/sessions/ongoing": {
            "get": {
                "tags": [
                    "Unified Sessions"
                ],
                "summary": "Sessions currently in progress",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "learnerIds",
                        "in": "query",
                        "type": "string",
                        "description": "Comma separated learner IDs"
                    },
                    {
                        "name": "kinds",
                        "in": "query",
                        "type": "string",
                        "description": "Comma separated kinds: quran, academic, course"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Deadline exceeded",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/unified/sessions/next": {
            "get": {
                "tags": [
                    "Unified Sessions"
                ],
                "summary": "Earliest scheduled session for a learner",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "learnerId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "kinds",
                        "in": "query",
                        "type": "string",
                        "description": "Comma separated kinds: quran, academic, course"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Deadline exceeded",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/unified/sessions/calendar": {
            "get": {
                "tags": [
                    "Unified Sessions"
                ],
                "summary": "Calendar events for a date range",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "learnerIds",
                        "in": "query",
                        "type": "string",
                        "description": "Comma separated learner IDs"
                    },
                    {
                        "name": "kinds",
                        "in": "query",
                        "type": "string",
                        "description": "Comma separated kinds: quran, academic, course"
                    },
                    {
                        "name": "start",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "end",
                        "in": "query",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Deadline exceeded",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/unified/sessions/counts": {
            "get": {
                "tags": [
                    "Unified Sessions"
                ],
                "summary": "Session counts per status",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "learnerIds",
                        "in": "query",
                        "type": "string",
                        "description": "Comma separated learner IDs"
                    },
                    {
                        "name": "kinds",
                        "in": "query",
                        "type": "string",
                        "description": "Comma separated kinds: quran, academic, course"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Deadline exceeded",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/unified/sessions/cache": {
            "delete": {
                "tags": [
                    "Unified Sessions"
                ],
                "summary": "Drop cached session listings for a learner",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "learnerId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        },
        "/api/v1/unified/subscriptions": {
            "get": {
                "tags": [
                    "Unified Subscriptions"
                ],
                "summary": "Subscriptions of every kind for a learner",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "learnerId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "kinds",
                        "in": "query",
                        "type": "string",
                        "description": "Comma separated kinds: quran, academic, course"
                    },
                    {
                        "name": "status",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "cache",
                        "in": "query",
                        "type": "boolean"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Deadline exceeded",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/unified/subscriptions/batch": {
            "get": {
                "tags": [
                    "Unified Subscriptions"
                ],
                "summary": "Subscriptions for several learners",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "learnerIds",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "kinds",
                        "in": "query",
                        "type": "string",
                        "description": "Comma separated kinds: quran, academic, course"
                    },
                    {
                        "name": "status",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Deadline exceeded",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/unified/subscriptions/active": {
            "get": {
                "tags": [
                    "Unified Subscriptions"
                ],
                "summary": "Active subscriptions for a learner",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "learnerId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "kinds",
                        "in": "query",
                        "type": "string",
                        "description": "Comma separated kinds: quran, academic, course"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Deadline exceeded",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/unified/subscriptions/grouped": {
            "get": {
                "tags": [
                    "Unified Subscriptions"
                ],
                "summary": "Learner subscriptions grouped by kind",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "learnerId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Deadline exceeded",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/unified/subscriptions/counts": {
            "get": {
                "tags": [
                    "Unified Subscriptions"
                ],
                "summary": "Subscription counts per status",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "learnerId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "kinds",
                        "in": "query",
                        "type": "string",
                        "description": "Comma separated kinds: quran, academic, course"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Deadline exceeded",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/unified/subscriptions/summary": {
            "get": {
                "tags": [
                    "Unified Subscriptions"
                ],
                "summary": "Subscription rollup for the learner dashboard",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "learnerId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Deadline exceeded",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/unified/subscriptions/has-active": {
            "get": {
                "tags": [
                    "Unified Subscriptions"
                ],
                "summary": "Whether the learner holds an active subscription",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "learnerId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "kind",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Deadline exceeded",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/unified/subscriptions/{kind}/{id}": {
            "get": {
                "tags": [
                    "Unified Subscriptions"
                ],
                "summary": "Load one subscription by kind and ID",
                "parameters": [
                    {
                        "name": "kind",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Deadline exceeded",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/unified/subscriptions/cache": {
            "delete": {
                "tags": [
                    "Unified Subscriptions"
                ],
                "summary": "Drop cached subscription listings for a learner",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "learnerId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        },
        "/api/v1/unified/statistics/student": {
            "get": {
                "tags": [
                    "Unified Statistics"
                ],
                "summary": "Full statistics report for a learner",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "learnerId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "cache",
                        "in": "query",
                        "type": "boolean"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Deadline exceeded",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/unified/statistics/students": {
            "get": {
                "tags": [
                    "Unified Statistics"
                ],
                "summary": "Statistics reports for several learners",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "learnerIds",
                        "in": "query",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Deadline exceeded",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/unified/statistics/attendance": {
            "get": {
                "tags": [
                    "Unified Statistics"
                ],
                "summary": "Attendance rate for a learner",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "learnerId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "byKind",
                        "in": "query",
                        "type": "boolean"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Deadline exceeded",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/unified/statistics/overview": {
            "get": {
                "tags": [
                    "Unified Statistics"
                ],
                "summary": "Light dashboard overview for a learner",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "learnerId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Store unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "504": {
                        "description": "Deadline exceeded",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/unified/statistics/cache": {
            "delete": {
                "tags": [
                    "Unified Statistics"
                ],
                "summary": "Drop cached statistics for a learner",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "learnerId",
                        "in": "query",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        },
        "/api/v1/unified/cache": {
            "delete": {
                "tags": [
                    "Unified Cache"
                ],
                "summary": "Invalidate unified caches by learner, tenant or globally",
                "parameters": [
                    {
                        "name": "tenantId",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "learnerId",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object"
                }
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
