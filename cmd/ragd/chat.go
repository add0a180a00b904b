package main

import (
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/ragd/internal/ops"
)

func init() {
	rootCmd.AddCommand(loadAndAnswerCmd)
	rootCmd.AddCommand(chatCmd)
}

var loadAndAnswerReq ops.LoadDocumentRequest

// loadAndAnswerCmd ingests one document into a throwaway store and
// answers a question against it in a single call.
var loadAndAnswerCmd = &cobra.Command{
	Use:   "load-and-answer",
	Short: "Answer a question against a single document",
	Long: `Load one document into an in-memory store and answer a question
grounded on it. Nothing is persisted.

Examples:
  ragd load-and-answer --context-path ./notes.txt --file-type text --question "What changed?"
  ragd load-and-answer --context-path https://example.com/post --file-type url --question "Summarize this"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, ops.OpLoadDocumentAndAnswer, loadAndAnswerReq)
	},
}

var chatReq ops.ChatRequest

// chatCmd runs one conversational turn against a persistent memory.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a persistent windowed memory",
	Long: `Send one message to the chat model, carrying prior turns from a
persistent memory. The memory keeps at most --max-messages recent
messages per memory name.

Examples:
  ragd chat --db-file-path ./chat.db --memory-name alice --message "hello"
  ragd chat --db-file-path ./chat.db --memory-name alice --message "what did I just say?" --max-messages 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, ops.OpChatWithMemory, chatReq)
	},
}

func init() {
	loadAndAnswerCmd.Flags().StringVar(&loadAndAnswerReq.Question, "question", "", "question to answer")
	loadAndAnswerCmd.Flags().StringVar(&loadAndAnswerReq.ContextPath, "context-path", "", "file path or URL of the document")
	loadAndAnswerCmd.Flags().StringVar(&loadAndAnswerReq.FileType, "file-type", "text", "document type: text, pdf, or url")
	loadAndAnswerCmd.MarkFlagRequired("question")
	loadAndAnswerCmd.MarkFlagRequired("context-path")

	chatCmd.Flags().StringVar(&chatReq.Message, "message", "", "user message for this turn")
	chatCmd.Flags().StringVar(&chatReq.MemoryName, "memory-name", "", "conversation identifier")
	chatCmd.Flags().StringVar(&chatReq.DBFilePath, "db-file-path", "", "path of the memory database file")
	chatCmd.Flags().IntVar(&chatReq.MaxMessages, "max-messages", 20, "maximum messages retained per memory")
	chatCmd.MarkFlagRequired("message")
	chatCmd.MarkFlagRequired("memory-name")
	chatCmd.MarkFlagRequired("db-file-path")
}
