package router

import "encoding/json"

// EngineDescription is the static introspection record returned by
// describe_engine and the CLI's --describe flag. It never reflects live
// instance state — only what the engine_type supports.
type EngineDescription struct {
	EngineType  string   `json:"engine_type"`
	Description string   `json:"description"`
	Dimensions  []int    `json:"dimensions"`
	CreateParams []string `json:"create_params"`
	Profiles    []string `json:"profiles,omitempty"`
	Commands    []string `json:"commands"`
}

// catalog is the closed, hand-maintained description of every
// engine_type in the enumeration. igsoa_gw carries no commands or
// profiles since nothing in this system describes its contract.
var catalog = map[string]EngineDescription{
	"phase4b": {
		EngineType:   "phase4b",
		Description:  "Cellular node-pool engine backed by the dlopen'd Phase 4C shared library.",
		Dimensions:   []int{1},
		CreateParams: []string{"num_nodes"},
		Commands:     []string{"run_mission", "get_metrics"},
	},
	"igsoa_complex": {
		EngineType:   "igsoa_complex",
		Description:  "1D complex-field IGSOA lattice.",
		Dimensions:   []int{1},
		CreateParams: []string{"num_nodes", "r_c", "kappa", "gamma", "dt"},
		Profiles:     []string{"gaussian", "uniform", "random", "localized", "reset"},
		Commands:     []string{"run_mission", "get_metrics", "get_state", "set_igsoa_state"},
	},
	"igsoa_complex_2d": {
		EngineType:   "igsoa_complex_2d",
		Description:  "2D complex-field IGSOA lattice.",
		Dimensions:   []int{2},
		CreateParams: []string{"n_x", "n_y", "r_c", "kappa", "gamma", "dt"},
		Profiles:     []string{"gaussian_2d", "circular_gaussian", "plane_wave_2d", "uniform", "random_2d", "localized", "reset"},
		Commands:     []string{"run_mission", "get_metrics", "get_state", "set_igsoa_state", "get_center_of_mass"},
	},
	"igsoa_complex_3d": {
		EngineType:   "igsoa_complex_3d",
		Description:  "3D complex-field IGSOA lattice.",
		Dimensions:   []int{3},
		CreateParams: []string{"n_x", "n_y", "n_z", "r_c", "kappa", "gamma", "dt"},
		Profiles:     []string{"gaussian_3d", "spherical_gaussian", "plane_wave_3d", "uniform", "random_3d", "localized", "reset"},
		Commands:     []string{"run_mission", "get_metrics", "get_state", "set_igsoa_state", "get_center_of_mass"},
	},
	"satp_higgs_1d": {
		EngineType:   "satp_higgs_1d",
		Description:  "1D coupled scalar/Higgs (SATP) lattice.",
		Dimensions:   []int{1},
		CreateParams: []string{"num_nodes", "c", "gamma_phi", "gamma_h", "lambda", "mu2", "lambda_h", "dx", "dt"},
		Profiles:     []string{"vacuum", "phi_gaussian", "higgs_gaussian", "three_zone_source", "uniform", "random_perturbation"},
		Commands:     []string{"run_mission", "get_metrics", "get_satp_state", "set_satp_state"},
	},
	"satp_higgs_2d": {
		EngineType:   "satp_higgs_2d",
		Description:  "2D coupled scalar/Higgs (SATP) lattice.",
		Dimensions:   []int{2},
		CreateParams: []string{"n_x", "n_y", "c", "gamma_phi", "gamma_h", "lambda", "mu2", "lambda_h", "dx", "dt"},
		Profiles:     []string{"vacuum", "phi_circular_gaussian", "higgs_circular_gaussian", "uniform", "random_perturbation"},
		Commands:     []string{"run_mission", "get_metrics", "get_satp_state", "set_satp_state"},
	},
	"satp_higgs_3d": {
		EngineType:   "satp_higgs_3d",
		Description:  "3D coupled scalar/Higgs (SATP) lattice.",
		Dimensions:   []int{3},
		CreateParams: []string{"n_x", "n_y", "n_z", "c", "gamma_phi", "gamma_h", "lambda", "mu2", "lambda_h", "dx", "dt"},
		Profiles:     []string{"vacuum", "phi_spherical_gaussian", "higgs_spherical_gaussian", "uniform", "random_perturbation"},
		Commands:     []string{"run_mission", "get_metrics", "get_satp_state", "set_satp_state"},
	},
	"sid_ternary": {
		EngineType:   "sid_ternary",
		Description:  "Ternary semantic processor: conserved I/N/U mass fields plus a rewrite diagram.",
		Dimensions:   []int{1},
		CreateParams: []string{"length", "capacity", "eps_conservation", "eps_delta"},
		Commands: []string{
			"sid_step", "sid_collapse", "sid_apply_rewrite",
			"sid_set_diagram_expr", "sid_set_diagram_json", "sid_get_diagram_json", "sid_rewrite_events",
		},
	},
	"igsoa_gw": {
		EngineType:   "igsoa_gw",
		Description:  "Recognized engine_type with no backing implementation; create_engine always fails for it.",
		CreateParams: []string{},
		Commands:     []string{},
	},
}

// describe returns the static description for name, and whether name is
// in the closed enumeration at all.
func describe(name string) (EngineDescription, bool) {
	d, ok := catalog[name]
	return d, ok
}

// DescribeJSON is used by the CLI's --describe flag, which prints a
// pretty-printed document directly rather than going through the
// Response envelope.
func DescribeJSON(name string) ([]byte, bool) {
	d, ok := describe(name)
	if !ok {
		return nil, false
	}
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, false
	}
	return raw, true
}
