package services

// ServiceError is a typed error with an HTTP status code, returned by the
// service layer and mapped directly by controllers.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string { return e.Message }
