// package services defines clients for the remote platform and the AI
// categorization service.
//
// YouTube Data API (catalog reads and playlist writes), OpenAI (classification
// and playlist suggestions).
package services
