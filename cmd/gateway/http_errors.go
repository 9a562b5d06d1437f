package main

import (
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/storefront/pkg/httpx"
)

// httpStatusFromGRPC maps a downstream gRPC error to an HTTP status, a stable
// error code and a message safe to show to the client.
func httpStatusFromGRPC(err error) (int, string, string) {
	st, ok := status.FromError(err)
	if !ok {
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}

	switch st.Code() {
	case codes.InvalidArgument:
		return http.StatusBadRequest, "INVALID_ARGUMENT", st.Message()
	case codes.NotFound:
		return http.StatusNotFound, "NOT_FOUND", st.Message()
	case codes.AlreadyExists:
		return http.StatusConflict, "ALREADY_EXISTS", st.Message()
	case codes.Unauthenticated:
		return http.StatusUnauthorized, "UNAUTHENTICATED", st.Message()
	case codes.Unavailable, codes.DeadlineExceeded:
		return http.StatusServiceUnavailable, "UNAVAILABLE", "service unavailable"
	default:
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Request string `json:"request_id,omitempty"`
}

func writeGRPCError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode, code, msg := httpStatusFromGRPC(err)
	httpx.WriteJSON(w, statusCode, errorBody{Error: msg, Code: code, Request: requestID(r.Context())})
}
