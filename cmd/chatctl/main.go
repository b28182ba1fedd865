// chatctl is a terminal client for the chat API. It streams responses,
// decodes embedded event segments and prints per-response timing.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	chattypes "github.com/jayabdulraman/social-agent-backend/internal/chat/types"
	"github.com/jayabdulraman/social-agent-backend/internal/stream"
	"github.com/tidwall/gjson"
)

var (
	addr   = flag.String("addr", "http://localhost:8080", "server address")
	model  = flag.String("model", "", "model label, server default when empty")
	tools  = flag.String("tools", "", "comma-separated tool categories, e.g. twitter")
	userID = flag.String("user", "", "connector user id")
)

func main() {
	flag.Parse()

	client := &http.Client{}
	scanner := bufio.NewScanner(os.Stdin)

	var thread *stream.Thread
	var history []chattypes.ChatMessage

	fmt.Println("chatctl: type a message, ctrl-d to quit")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if thread == nil {
			thread = stream.NewThread(input)
			fmt.Printf("[%s]\n", thread.Title)
		}
		thread.AddUserMessage(input)
		history = append(history, chattypes.ChatMessage{Role: stream.RoleUser, Content: input})

		reply, err := send(client, thread, history)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		history = append(history, chattypes.ChatMessage{Role: stream.RoleAssistant, Content: reply})
	}
}

func send(client *http.Client, thread *stream.Thread, history []chattypes.ChatMessage) (string, error) {
	var toolList []string
	if *tools != "" {
		toolList = strings.Split(*tools, ",")
	}

	body, err := json.Marshal(chattypes.ChatRequest{
		Messages: history,
		Model:    *model,
		Tools:    toolList,
		UserID:   *userID,
	})
	if err != nil {
		return "", err
	}

	resp, err := client.Post(*addr+"/api/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	msg := thread.BeginAssistantMessage(*model)
	dec := stream.NewDecoder(nil)
	metrics := stream.NewMetrics()

	// Incremental display: print the clean text's stable prefix as it
	// grows. A chunk that completes a segment can rewrite the tail, in
	// which case printing pauses until the text catches up again.
	printed := 0
	buf := make([]byte, 4096)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			chunk := string(buf[:n])
			metrics.Observe(chunk)
			dec.Feed(chunk)

			clean := dec.CleanText()
			if len(clean) > printed && strings.HasPrefix(clean, clean[:printed]) {
				fmt.Print(clean[printed:])
				printed = len(clean)
			}

			msg.Update(dec, metrics.Compute(clean))
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return "", rerr
		}
	}

	clean := dec.CleanText()
	if len(clean) > printed {
		fmt.Print(clean[printed:])
	}
	fmt.Println()

	msg.Update(dec, metrics.Compute(clean))
	msg.Close()

	printEvents(msg)
	printMetrics(msg.Metrics)
	return clean, nil
}

func printEvents(msg *stream.Message) {
	for _, call := range msg.ToolCalls {
		fmt.Printf("  [tool] %s %s\n", call.ToolName, compact(call.Args))
	}
	for _, card := range msg.Cards {
		content := gjson.GetBytes(card.Payload, "content").String()
		fmt.Printf("  [preview] %s: %s\n", gjson.GetBytes(card.Payload, "type").String(), content)
	}
}

func printMetrics(m stream.Snapshot) {
	fmt.Printf("  [%.1fs elapsed, %.0fms to first token, ~%d tokens",
		m.Elapsed.Seconds(), float64(m.TimeToFirstToken.Milliseconds()), m.TokenEstimate)
	if m.TokensPerSecond > 0 {
		fmt.Printf(", %.1f tok/s", m.TokensPerSecond)
	}
	fmt.Println("]")
}

func compact(raw json.RawMessage) string {
	var out bytes.Buffer
	if err := json.Compact(&out, raw); err != nil {
		return string(raw)
	}
	s := out.String()
	if len(s) > 80 {
		s = s[:77] + "..."
	}
	return s
}
