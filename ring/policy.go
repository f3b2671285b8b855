package ring

// PolicyCategory identifies which family of Intune policy a policy id
// belongs to. The set is closed: every category must have an entry in
// graphResources, and policy detection probes the categories in the order
// returned by PolicyCategories.
type PolicyCategory string

const (
	CategoryConfiguration     PolicyCategory = "configuration"
	CategorySettingsCatalog   PolicyCategory = "configuration-settings-catalog"
	CategoryCompliance        PolicyCategory = "compliance"
	CategoryAutopilotProfile  PolicyCategory = "autopilot-profile"
	CategoryAppProtection     PolicyCategory = "application-protection"
	CategoryConditionalAccess PolicyCategory = "conditional-access"
)

// GraphResource describes where one category of policy lives in the
// Microsoft Graph API.
type GraphResource struct {
	// Collection is the resource path under the Graph API root, for
	// example "deviceManagement/deviceConfigurations".
	Collection string
	// NameField is the JSON property of the resource that carries the
	// policy's display name. Most categories use displayName; settings
	// catalog policies use name.
	NameField string
}

// graphResources is the single mapping table from category to Graph
// resource. PolicyCategories and Valid both derive from it, so a category
// missing here is invisible to the rest of the system rather than a
// runtime surprise.
var graphResources = map[PolicyCategory]GraphResource{
	CategoryConfiguration:     {Collection: "deviceManagement/deviceConfigurations", NameField: "displayName"},
	CategorySettingsCatalog:   {Collection: "deviceManagement/configurationPolicies", NameField: "name"},
	CategoryCompliance:        {Collection: "deviceManagement/deviceCompliancePolicies", NameField: "displayName"},
	CategoryAutopilotProfile:  {Collection: "deviceManagement/windowsAutopilotDeploymentProfiles", NameField: "displayName"},
	CategoryAppProtection:     {Collection: "deviceAppManagement/managedAppPolicies", NameField: "displayName"},
	CategoryConditionalAccess: {Collection: "identity/conditionalAccess/policies", NameField: "displayName"},
}

// PolicyCategories returns all known categories in detection probe order,
// most common first.
func PolicyCategories() []PolicyCategory {
	return []PolicyCategory{
		CategoryConfiguration,
		CategorySettingsCatalog,
		CategoryCompliance,
		CategoryAutopilotProfile,
		CategoryAppProtection,
		CategoryConditionalAccess,
	}
}

func (c PolicyCategory) Valid() bool {
	_, ok := graphResources[c]
	return ok
}

// GraphResource returns the Graph API location for policies of this
// category. The second return is false for unknown categories.
func (c PolicyCategory) GraphResource() (GraphResource, bool) {
	r, ok := graphResources[c]
	return r, ok
}

// Policy is the identity of one Intune policy, immutable for the duration
// of a run. The remote service owns the policy itself; only its
// assignment list is ever mutated here.
type Policy struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Category    PolicyCategory `json:"category"`
}
