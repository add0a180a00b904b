package main

import (
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/ragd/internal/ops"
)

func init() {
	rootCmd.AddCommand(createStoreCmd)
	rootCmd.AddCommand(addDocumentCmd)
	rootCmd.AddCommand(addFolderCmd)
	rootCmd.AddCommand(queryStoreCmd)
	rootCmd.AddCommand(answerCmd)
}

var createStoreReq ops.CreateStoreRequest

// createStoreCmd writes a new, empty store snapshot to disk.
var createStoreCmd = &cobra.Command{
	Use:   "create-store",
	Short: "Create a new, empty vector store file",
	Long: `Create a new, empty vector store snapshot at the given path.

Examples:
  ragd create-store --store-name ./stores/docs.store`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, ops.OpCreateStore, createStoreReq)
	},
}

var addDocumentReq ops.AddDocumentRequest

// addDocumentCmd ingests one document into an existing store.
var addDocumentCmd = &cobra.Command{
	Use:   "add-document",
	Short: "Ingest one document into a store",
	Long: `Load a document, split it into segments, embed each segment, and
append the results to an existing store snapshot.

Examples:
  ragd add-document --store-name ./docs.store --context-path ./notes.txt --file-type text
  ragd add-document --store-name ./docs.store --context-path ./report.pdf --file-type pdf
  ragd add-document --store-name ./docs.store --context-path https://example.com/post --file-type url`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, ops.OpAddDocumentToStore, addDocumentReq)
	},
}

var addFolderReq ops.AddFolderRequest

// addFolderCmd ingests every regular file under a directory.
var addFolderCmd = &cobra.Command{
	Use:   "add-folder",
	Short: "Ingest every file in a folder into a store",
	Long: `Walk a directory tree and ingest every regular file into an existing
store snapshot. Files that fail to load are logged and skipped.

Examples:
  ragd add-folder --store-name ./docs.store --folder-path ./corpus --file-type text`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, ops.OpAddFolderToStore, addFolderReq)
	},
}

var queryStoreReq ops.QueryStoreRequest

// queryStoreCmd retrieves relevant segments without a completion.
var queryStoreCmd = &cobra.Command{
	Use:   "query-store",
	Short: "Retrieve relevant segments from a store",
	Long: `Embed the question and return the most relevant stored segments,
without calling the chat model.

Examples:
  ragd query-store --store-name ./docs.store --question "How is auth configured?"
  ragd query-store --store-name ./docs.store --question "..." --max-results 10 --min-score 0.5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, ops.OpQueryStore, queryStoreReq)
	},
}

var answerReq ops.AnswerFromStoreRequest

// answerCmd answers a question grounded on a store.
var answerCmd = &cobra.Command{
	Use:   "answer",
	Short: "Answer a question grounded on a store",
	Long: `Retrieve the most relevant stored segments and ask the chat model to
answer the question using them. Sources and token usage are reported
alongside the answer.

Examples:
  ragd answer --store-name ./docs.store --question "How is auth configured?"
  ragd answer --store-name ./docs.store --question "..." --get-latest`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, ops.OpAnswerFromStore, answerReq)
	},
}

func init() {
	createStoreCmd.Flags().StringVar(&createStoreReq.StoreName, "store-name", "", "path of the store file to create")
	createStoreCmd.MarkFlagRequired("store-name")

	addDocumentCmd.Flags().StringVar(&addDocumentReq.StoreName, "store-name", "", "path of the store file to update")
	addDocumentCmd.Flags().StringVar(&addDocumentReq.ContextPath, "context-path", "", "file path or URL of the document")
	addDocumentCmd.Flags().StringVar(&addDocumentReq.FileType, "file-type", "text", "document type: text, pdf, or url")
	addDocumentCmd.MarkFlagRequired("store-name")
	addDocumentCmd.MarkFlagRequired("context-path")

	addFolderCmd.Flags().StringVar(&addFolderReq.StoreName, "store-name", "", "path of the store file to update")
	addFolderCmd.Flags().StringVar(&addFolderReq.FolderPath, "folder-path", "", "directory to walk")
	addFolderCmd.Flags().StringVar(&addFolderReq.FileType, "file-type", "text", "document type: text or pdf")
	addFolderCmd.MarkFlagRequired("store-name")
	addFolderCmd.MarkFlagRequired("folder-path")

	queryStoreCmd.Flags().StringVar(&queryStoreReq.StoreName, "store-name", "", "path of the store file to query")
	queryStoreCmd.Flags().StringVar(&queryStoreReq.Question, "question", "", "question to embed and match")
	queryStoreCmd.Flags().IntVar(&queryStoreReq.MaxResults, "max-results", 0, "maximum segments to return (0 uses the default)")
	queryStoreCmd.Flags().Float64Var(&queryStoreReq.MinScore, "min-score", 0, "minimum similarity score (0 uses the default)")
	queryStoreCmd.Flags().BoolVar(&queryStoreReq.GetLatest, "get-latest", false, "reload the store file from disk")
	queryStoreCmd.MarkFlagRequired("store-name")
	queryStoreCmd.MarkFlagRequired("question")

	answerCmd.Flags().StringVar(&answerReq.StoreName, "store-name", "", "path of the store file to query")
	answerCmd.Flags().StringVar(&answerReq.Question, "question", "", "question to answer")
	answerCmd.Flags().IntVar(&answerReq.MaxResults, "max-results", 0, "maximum segments to retrieve (0 uses the default)")
	answerCmd.Flags().Float64Var(&answerReq.MinScore, "min-score", 0, "minimum similarity score (0 uses the default)")
	answerCmd.Flags().BoolVar(&answerReq.GetLatest, "get-latest", false, "reload the store file from disk")
	answerCmd.MarkFlagRequired("store-name")
	answerCmd.MarkFlagRequired("question")
}
