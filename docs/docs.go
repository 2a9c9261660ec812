// Package docs содержит описание API для swagger UI.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "http://swagger.io/terms/",
        "contact": {
            "name": "API Support",
            "url": "http://www.swagger.io/support",
            "email": "support@swagger.io"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/subscriptions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Subscriptions"],
                "summary": "Список подписок пользователя",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Subscriptions"],
                "summary": "Создать подписку",
                "parameters": [
                    {"description": "Данные подписки", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.SubscriptionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректный запрос", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/subscriptions/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Subscriptions"],
                "summary": "Получить подписку",
                "parameters": [
                    {"type": "integer", "description": "ID подписки", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Подписка не найдена", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Subscriptions"],
                "summary": "Изменить подписку",
                "parameters": [
                    {"type": "integer", "description": "ID подписки", "name": "id", "in": "path", "required": true},
                    {"description": "Новые данные подписки", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.SubscriptionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Подписка не найдена", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Subscriptions"],
                "summary": "Удалить подписку",
                "parameters": [
                    {"type": "integer", "description": "ID подписки", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Подписка не найдена", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/subscriptions/{id}/offers": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Subscriptions"],
                "summary": "Похожие предложения дешевле подписки",
                "parameters": [
                    {"type": "integer", "description": "ID подписки", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Количество предложений (1..50)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Подписка не найдена", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/calendar": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Calendar"],
                "summary": "Календарь списаний",
                "parameters": [
                    {"type": "string", "description": "month, week или day", "name": "view", "in": "query"},
                    {"type": "string", "description": "День внутри окна, YYYY-MM-DD", "name": "date", "in": "query"},
                    {"type": "string", "description": "Начало диапазона, YYYY-MM-DD", "name": "from", "in": "query"},
                    {"type": "string", "description": "Конец диапазона, YYYY-MM-DD", "name": "to", "in": "query"},
                    {"type": "string", "description": "Текущий день, YYYY-MM-DD", "name": "today", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректный запрос", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Некорректное окно дат", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Calendar"],
                "summary": "Календарь списаний по явному списку дней",
                "parameters": [
                    {"description": "Дни окна", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CalendarRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "413": {"description": "Слишком большое тело запроса", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Некорректное окно дат", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.SubscriptionRequest": {
            "type": "object",
            "required": ["title", "due_type", "due_date"],
            "properties": {
                "title": {"type": "string"},
                "price": {"type": "string", "example": "9.99"},
                "due_type": {"type": "string", "enum": ["monthly", "yearly"]},
                "due_date": {"type": "string", "example": "2024-01-31"},
                "end_date": {"type": "string", "example": "2025-01-31"},
                "category_id": {"type": "integer"},
                "company_id": {"type": "integer"},
                "custom_company": {"type": "string"}
            }
        },
        "models.CalendarRequest": {
            "type": "object",
            "required": ["dates"],
            "properties": {
                "dates": {"type": "array", "items": {"type": "string"}},
                "today": {"type": "string"}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "error": {"type": "string"},
                "data": {}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "Error"},
                "error": {"type": "string", "example": "invalid request body"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo метаданные API, подставляемые в шаблон.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Subscription Calendar API",
	Description:      "API календаря списаний по подпискам пользователей",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
