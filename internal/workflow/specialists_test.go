package workflow_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/petasbytes/medbot/internal/fakeapi"
	"github.com/petasbytes/medbot/internal/prompts"
	"github.com/petasbytes/medbot/internal/route"
	"github.com/petasbytes/medbot/internal/supervisor"
	"github.com/petasbytes/medbot/internal/workflow"
	"github.com/petasbytes/medbot/memory"
	"github.com/petasbytes/medbot/tools"
)

func TestSpecialists_OneNodePerMember(t *testing.T) {
	nodes := workflow.Specialists(prompts.Default(), fakeapi.New().Client(), workflow.Settings{})
	if len(nodes) != len(route.Members) {
		t.Fatalf("expected %d nodes, got %d", len(route.Members), len(nodes))
	}
	for _, m := range route.Members {
		if nodes[m] == nil {
			t.Errorf("missing node for %s", m)
		}
	}
	if _, ok := nodes[route.Finish]; ok {
		t.Error("FINISH must not have a node")
	}
}

func TestSpecialists_HelloRoutesToGreeting(t *testing.T) {
	fake := fakeapi.New(
		fakeapi.ToolUse("r1", supervisor.ToolName, `{"next":"GreetingAgent"}`),
		fakeapi.ToolUse("t1", "greeting_tool", `{}`),
		fakeapi.Text("Hello! How can I assist you today?"),
		fakeapi.Text("Hello! How can I assist you today?"),
	)
	client := fake.Client()
	cat := prompts.Default()
	w := workflow.New(supervisor.New(client, cat), workflow.Specialists(cat, client, workflow.Settings{}))
	conv := memory.NewConversation(memory.UserMessage("hello"))

	res, err := w.Step(context.Background(), conv)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Route != route.Greeting || !res.Replied || !strings.Contains(res.Reply.Text, "Hello!") {
		t.Fatalf("unexpected result: %+v", res)
	}
	if fake.Calls() != 4 {
		t.Fatalf("expected route, agent, tool and final agent calls; got %d", fake.Calls())
	}

	// The agent request offers only the greeting tool under the agent's own system prompt.
	var agentReq struct {
		System []struct {
			Text string `json:"text"`
		} `json:"system"`
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(fake.Requests[1].Body, &agentReq); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(agentReq.Tools) != 1 || agentReq.Tools[0].Name != "greeting_tool" {
		t.Fatalf("unexpected tools: %+v", agentReq.Tools)
	}
	if len(agentReq.System) != 1 || !strings.Contains(agentReq.System[0].Text, "You are GreetingAgent") {
		t.Fatalf("unexpected system: %+v", agentReq.System)
	}
}

func TestSpecialists_EachNodeOffersItsRegistryTool(t *testing.T) {
	cat := prompts.Default()
	defs := tools.Registry(cat, nil)
	for i, m := range route.Members {
		t.Run(string(m), func(t *testing.T) {
			fake := fakeapi.New(fakeapi.Text("ok"))
			nodes := workflow.Specialists(cat, fake.Client(), workflow.Settings{})

			reply, err := nodes[m](context.Background(), []memory.Message{memory.UserMessage("hi")})
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if reply.Name != string(m) || reply.Text != "ok" {
				t.Fatalf("unexpected reply: %+v", reply)
			}
			var req struct {
				Tools []struct {
					Name string `json:"name"`
				} `json:"tools"`
			}
			if err := json.Unmarshal(fake.Requests[0].Body, &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(req.Tools) != 1 || req.Tools[0].Name != defs[i].Name {
				t.Fatalf("expected %s, got %+v", defs[i].Name, req.Tools)
			}
		})
	}
}
