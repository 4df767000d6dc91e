package domain

var (
	PRACTICE_START_SUCCESS         = "Practice session started"
	PRACTICE_START_FAILED          = "Failed to start practice session"
	PRACTICE_NEXT_QUESTION_SUCCESS = "Question fetched"
	PRACTICE_NEXT_QUESTION_FAILED  = "Failed to fetch question"
	PRACTICE_SUBMIT_ANSWER_SUCCESS = "Answer graded"
	PRACTICE_SUBMIT_ANSWER_FAILED  = "Failed to grade answer"
	PRACTICE_COMPLETE_SUCCESS      = "Practice session completed"
	PRACTICE_COMPLETE_FAILED       = "Failed to complete practice session"
	PRACTICE_ABANDON_SUCCESS       = "Practice session abandoned"
	PRACTICE_ABANDON_FAILED        = "Failed to abandon practice session"
	PRACTICE_GET_SESSION_SUCCESS   = "Session fetched"
	PRACTICE_GET_SESSION_FAILED    = "Failed to fetch session"
	PRACTICE_LIST_SESSIONS_SUCCESS = "Sessions fetched"
	PRACTICE_LIST_SESSIONS_FAILED  = "Failed to fetch sessions"
	PROGRESS_GET_SUCCESS           = "Progress fetched"
	PROGRESS_GET_FAILED            = "Failed to fetch progress"
	CHAT_SESSION_CREATE_SUCCESS    = "Chat session created"
	CHAT_SESSION_CREATE_FAILED     = "Failed to create chat session"
	CHAT_SESSION_LIST_SUCCESS      = "Chat sessions fetched"
	CHAT_SESSION_LIST_FAILED       = "Failed to fetch chat sessions"
	CHAT_SESSION_DELETE_SUCCESS    = "Chat session deleted"
	CHAT_SESSION_DELETE_FAILED     = "Failed to delete chat session"
	CHAT_SEND_SUCCESS              = "Message sent"
	CHAT_SEND_FAILED               = "Failed to send message"
	CHAT_HISTORY_SUCCESS           = "Chat history fetched"
	CHAT_HISTORY_FAILED            = "Failed to fetch chat history"
	RAG_QUERY_SUCCESS              = "Question answered"
	RAG_QUERY_FAILED               = "Failed to answer question"
	RAG_RETRIEVE_SUCCESS           = "Document chunks fetched"
	RAG_RETRIEVE_FAILED            = "Failed to fetch document chunks"
)
