// Package llm turns a caller payload into a single chat completion request.
//
// Each Route names the payload fields it needs, the prompt template that
// renders them, and the model settings. Payloads may arrive wrapped in a
// "requestBody" object; Normalize unwraps them once for every route except
// the TopLevelOnly one.
package llm
