package router

import (
	"encoding/json"
	"net/http"
)

// ResponseDecorator is a helper function to decorate response
type ResponseDecorator func(w http.ResponseWriter) error

// HandlerToolkit is a collection of tools to process request and build a response
type HandlerToolkit interface {
	BindParams() *ParamsBinder

	// BindPayload decodes json body and validates it if receiver is a struct
	BindPayload(receiver interface{}) error

	// WriteJSON will serialize the payload and write it to the response
	// Optionally use decorators, for example WithStatus
	WriteJSON(payload interface{}, decorators ...ResponseDecorator) error

	WithStatus(status int) ResponseDecorator
}

type handlerToolkit struct {
	request        *http.Request
	responseWriter http.ResponseWriter
	validator      *structValidator
}

func (h *handlerToolkit) BindParams() *ParamsBinder {
	return newParamsBinder(h.request, h.validator)
}

func (h *handlerToolkit) BindPayload(receiver interface{}) error {
	if err := json.NewDecoder(h.request.Body).Decode(receiver); err != nil {
		logger.WithError(err).Info(h.request.Context(), "Failed to decode payload")
		return BadRequestError("Malformed payload: " + err.Error())
	}

	// validator fails on maps
	if _, isMap := receiver.(*map[string]interface{}); isMap {
		return nil
	}
	return h.validator.validateStruct(h.request.Context(), receiver)
}

func (h *handlerToolkit) WriteJSON(payload interface{}, decorators ...ResponseDecorator) error {
	// Headers are ignored once WithStatus has written the status
	h.responseWriter.Header().Set("content-type", "application/json")
	for _, decorator := range decorators {
		if err := decorator(h.responseWriter); err != nil {
			return err
		}
	}
	return json.NewEncoder(h.responseWriter).Encode(payload)
}

func (h *handlerToolkit) WithStatus(status int) ResponseDecorator {
	return func(w http.ResponseWriter) error {
		w.WriteHeader(status)
		return nil
	}
}
