package http1

// Status codes produced by deckd handlers.
const (
	StatusOK                  = 200
	StatusCreated             = 201
	StatusNoContent           = 204
	StatusPartialContent      = 206
	StatusBadRequest          = 400
	StatusUnauthorized        = 401
	StatusForbidden           = 403
	StatusNotFound            = 404
	StatusConflict            = 409
	StatusRangeNotSatisfiable = 416
	StatusUnprocessableEntity = 422
	StatusInternalServerError = 500
)

var reasonPhrases = map[int]string{
	StatusOK:                  "OK",
	StatusCreated:             "Created",
	StatusNoContent:           "No Content",
	StatusPartialContent:      "Partial Content",
	StatusBadRequest:          "Bad Request",
	StatusUnauthorized:        "Unauthorized",
	StatusForbidden:           "Forbidden",
	StatusNotFound:            "Not Found",
	StatusConflict:            "Conflict",
	StatusRangeNotSatisfiable: "Range Not Satisfiable",
	StatusUnprocessableEntity: "Unprocessable Entity",
	StatusInternalServerError: "Internal Server Error",
}

// ReasonPhrase returns the reason phrase for code.
//
// Codes outside the table yield "OK". Clients already depend on that text,
// so a Response that needs a different phrase for such a code sets
// StatusMessage explicitly.
func ReasonPhrase(code int) string {
	if phrase, ok := reasonPhrases[code]; ok {
		return phrase
	}
	return "OK"
}
