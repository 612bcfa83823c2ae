package topology

// Cortical microcircuit parameters (Potjans and Diesmann 2014).

// CorticalLabels fixes the population order shared by the size table and the
// probability matrix.
var CorticalLabels = []string{"23e", "23i", "4e", "4i", "5e", "5i", "6e", "6i"}

// CorticalSizes are the full-scale population sizes in CorticalLabels order.
var CorticalSizes = []int{20683, 5834, 21915, 5479, 4850, 1065, 14395, 2948}

// CorticalConnProbs holds the probability of at least one connection between
// neurons of two populations, indexed [target][source].
var CorticalConnProbs = [][]float64{
	//  23e     23i     4e      4i      5e      5i      6e      6i
	{0.1009, 0.1689, 0.0437, 0.0818, 0.0323, 0., 0.0076, 0.},
	{0.1346, 0.1371, 0.0316, 0.0515, 0.0755, 0., 0.0042, 0.},
	{0.0077, 0.0059, 0.0497, 0.135, 0.0067, 0.0003, 0.0453, 0.},
	{0.0691, 0.0029, 0.0794, 0.1597, 0.0033, 0., 0.1057, 0.},
	{0.1004, 0.0622, 0.0505, 0.0057, 0.0831, 0.3726, 0.0204, 0.},
	{0.0548, 0.0269, 0.0257, 0.0022, 0.06, 0.3158, 0.0086, 0.},
	{0.0156, 0.0066, 0.0211, 0.0166, 0.0572, 0.0197, 0.0396, 0.2252},
	{0.0364, 0.001, 0.0034, 0.0005, 0.0277, 0.008, 0.0658, 0.1443},
}

// CorticalExternalInDegree is the number of external inputs per neuron.
var CorticalExternalInDegree = []int{1600, 1500, 2100, 1900, 2000, 1900, 2900, 2100}

// CorticalBackgroundRate is the background rate per synapse in Hz.
const CorticalBackgroundRate = 8.0
