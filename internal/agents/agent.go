// Package agents is the agent registry domain: the persisted Collection of
// agent records, id allocation, validation, and the HTTP handlers that
// mutate it.
package agents

// Agent is a catalog record describing one AI-capable service.
type Agent struct {
	ID              int      `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Description     string   `json:"description" yaml:"description"`
	Category        string   `json:"category" yaml:"category"`
	Capabilities    []string `json:"capabilities" yaml:"capabilities"`
	IsEnabled       bool     `json:"isEnabled" yaml:"isEnabled"`
	APIEndpoint     string   `json:"apiEndpoint,omitempty" yaml:"apiEndpoint,omitempty"`
	APIKey          string   `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
	ImageURL        string   `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	JarFileLocation string   `json:"jarFileLocation,omitempty" yaml:"jarFileLocation,omitempty"`
}

// Collection is the full ordered set of agents and the revision of the
// document it was loaded from. An empty Revision means no document existed.
// Collections saved over an existing document must come from LoadAll.
type Collection struct {
	Agents   []Agent
	Revision string

	data []byte
}

// Find returns the index of the agent with id, or -1.
func (c *Collection) Find(id int) int {
	for i := range c.Agents {
		if c.Agents[i].ID == id {
			return i
		}
	}
	return -1
}

// CreateCommand contains the fields of a new agent. The id is assigned by the
// registry.
type CreateCommand struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	Capabilities    []string `json:"capabilities"`
	IsEnabled       bool     `json:"isEnabled"`
	APIEndpoint     string   `json:"apiEndpoint"`
	APIKey          string   `json:"apiKey"`
	ImageURL        string   `json:"imageUrl"`
	JarFileLocation string   `json:"jarFileLocation"`
}

// UpdateCommand contains a partial agent. Nil fields keep their stored value.
// ID, when set, must match the agent being updated.
type UpdateCommand struct {
	ID              *int      `json:"id"`
	Name            *string   `json:"name"`
	Description     *string   `json:"description"`
	Category        *string   `json:"category"`
	Capabilities    *[]string `json:"capabilities"`
	IsEnabled       *bool     `json:"isEnabled"`
	APIEndpoint     *string   `json:"apiEndpoint"`
	APIKey          *string   `json:"apiKey"`
	ImageURL        *string   `json:"imageUrl"`
	JarFileLocation *string   `json:"jarFileLocation"`
}

func (cmd CreateCommand) agent(id int) Agent {
	return Agent{
		ID:              id,
		Name:            cmd.Name,
		Description:     cmd.Description,
		Category:        cmd.Category,
		Capabilities:    cmd.Capabilities,
		IsEnabled:       cmd.IsEnabled,
		APIEndpoint:     cmd.APIEndpoint,
		APIKey:          cmd.APIKey,
		ImageURL:        cmd.ImageURL,
		JarFileLocation: cmd.JarFileLocation,
	}
}

func (cmd UpdateCommand) apply(a Agent) Agent {
	if cmd.Name != nil {
		a.Name = *cmd.Name
	}
	if cmd.Description != nil {
		a.Description = *cmd.Description
	}
	if cmd.Category != nil {
		a.Category = *cmd.Category
	}
	if cmd.Capabilities != nil {
		a.Capabilities = *cmd.Capabilities
	}
	if cmd.IsEnabled != nil {
		a.IsEnabled = *cmd.IsEnabled
	}
	if cmd.APIEndpoint != nil {
		a.APIEndpoint = *cmd.APIEndpoint
	}
	if cmd.APIKey != nil {
		a.APIKey = *cmd.APIKey
	}
	if cmd.ImageURL != nil {
		a.ImageURL = *cmd.ImageURL
	}
	if cmd.JarFileLocation != nil {
		a.JarFileLocation = *cmd.JarFileLocation
	}
	return a
}
