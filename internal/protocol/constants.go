package protocol

const (
	ToolNameSearchContent = "search_course_content"
	ToolNameCourseOutline = "get_course_outline"
)

const (
	ErrorCodeSessionNotFound = "SESSION_NOT_FOUND"
	ErrorCodeCourseNotFound  = "COURSE_NOT_FOUND"
	ErrorCodeBackendFailure  = "BACKEND_FAILURE"
)

const (
	DefaultListenAddr = "127.0.0.1:8000"

	QueryPath   = "/api/query"
	CoursesPath = "/api/courses"

	SessionHeader = "X-Session-Id"
)
